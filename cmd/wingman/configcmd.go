package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wingman-panel/wingman/internal/config"
	"github.com/wingman-panel/wingman/internal/tui"
)

var configOpts struct {
	defaults bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.DefaultConfig()
		if !configOpts.defaults {
			res, _, err := loadConfig()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "# %v\n", err)
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configExplainCmd = &cobra.Command{
	Use:     "explain <yaml.path>",
	Short:   "Show a config value and where it came from",
	Example: `  wingman config explain dock.side`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, err := loadConfig()
		if err != nil {
			return err
		}
		value, src, err := config.Explain(res, args[0])
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "path: %s\n", args[0])
		fmt.Fprintf(w, "source: %s\n", src)
		fmt.Fprintf(w, "value:\n%s", string(out))
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config file and report helper programs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, path, err := loadConfig()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		printWarnings(w, res.Warnings)
		printTools(w, config.DetectTools())
		if len(res.Warnings) > 0 {
			return fmt.Errorf("%s: %d value(s) would be reset to defaults", path, len(res.Warnings))
		}
		fmt.Fprintln(w, "config: ok")
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit settings interactively",
	Long: `Edit the common settings in a form, save them, and ask a running
daemon to reload.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, path, err := loadConfig()
		if err != nil && !errors.Is(err, config.ErrUnreadable) {
			return err
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; starting from defaults\n", err)
		}
		cfg := res.Config

		if err := tui.EditSettings(cfg); err != nil {
			if errors.Is(err, tui.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "no changes saved")
				return nil
			}
			return err
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", path)

		if err := newClient().Reload(); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "daemon not reloaded:", err)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "daemon reloaded")
		}
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configOpts.defaults, "defaults", false,
		"Print built-in defaults instead of the effective config")
	configCmd.AddCommand(configPathCmd, configShowCmd, configExplainCmd, configCheckCmd, configEditCmd)
	rootCmd.AddCommand(configCmd)
}

func printWarnings(w io.Writer, warnings []error) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}

func printTools(w io.Writer, tools []config.DetectedTool) {
	for _, tool := range tools {
		if tool.Found {
			fmt.Fprintf(w, "tool %-8s found    %s (%s)\n", tool.Name, tool.Path, tool.Purpose)
		} else {
			fmt.Fprintf(w, "tool %-8s missing  (%s)\n", tool.Name, tool.Purpose)
		}
	}
}
