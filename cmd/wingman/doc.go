package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wingman-panel/wingman/internal/docs"
	"github.com/wingman-panel/wingman/internal/procexec"
)

var docOpts struct {
	online bool
}

var docCmd = &cobra.Command{
	Use:   "doc <name>",
	Short: "Print documentation for a command",
	Long: `Resolve documentation for a command the same way the daemon does:
man page first, then --help/-h/help output, then a fallback message.

With --online the configured search URL is fetched instead.`,
	Example: `  wingman doc tar
  wingman doc rsync --online`,
	Args: cobra.ExactArgs(1),
	RunE: runDoc,
}

func init() {
	rootCmd.AddCommand(docCmd)
	docCmd.Flags().BoolVar(&docOpts.online, "online", false,
		"Fetch documentation from the configured online URL")
}

func runDoc(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("command name is empty")
	}

	res, _, loadErr := loadConfig()
	logger, err := newLogger(res.Config, globalOpts.debug, "")
	if err != nil {
		return err
	}
	defer logger.Close()
	logLoad(logger.Component("config"), res, loadErr)

	cfg := res.Config
	lookup := newDocResolver(cfg, procexec.NewExecRunner(cfg.Docs.Timeout), logger.Component("docs"))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var result docs.Result
	if docOpts.online {
		result = lookup.Online(ctx, name)
	} else {
		result = lookup.Get(ctx, name)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s\n\n", result.Title(name))
	fmt.Fprintln(out, result.Text)
	return nil
}
