package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wingman-panel/wingman/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Render the documentation panel in this terminal",
	Long: `Attach to the running daemon and render the panel in the current
terminal. Name the terminal window "wingman-panel" (most terminals take a
--title flag) so the daemon can move it and ignores its focus.

Keys: t/b/l/r dock side, a auto-position, p pin, / look up a command,
o online lookup, v hide, q quit.`,
	Example: `  alacritty --title wingman-panel -e wingman watch`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client := newClient()
		if err := client.Ping(); err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return tui.RunWatch(ctx, client)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
