package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wingman-panel/wingman/internal/palette"
	"github.com/wingman-panel/wingman/internal/procexec"
)

// menuTimeout bounds how long the launcher may wait for the user.
const menuTimeout = 2 * time.Minute

var menuOpts struct {
	launcher string
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Open the control menu in a launcher",
	Long: `Show wingman's control menu (dock side, auto-position, show/hide,
online docs, reload, quit) in rofi, fuzzel, wofi or dmenu.

Bind this to a key in your window manager for quick access.`,
	Example: `  bindsym $mod+d exec wingman menu --launcher fuzzel`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		backend, err := palette.NewBackend(menuOpts.launcher, procexec.NewExecRunner(menuTimeout), procexec.Available)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		result, err := palette.Run(ctx, backend, newClient())
		if err != nil {
			return err
		}
		if result != "" {
			fmt.Fprintln(cmd.OutOrStdout(), result)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
	menuCmd.Flags().StringVar(&menuOpts.launcher, "launcher", "auto",
		"Launcher to use: auto, rofi, fuzzel, wofi, dmenu")
}
