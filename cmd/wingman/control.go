package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/ipc"
	"github.com/wingman-panel/wingman/internal/platform"
)

// newClient is replaced in tests.
var newClient = ipc.NewClient

var statusOpts struct {
	json bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := newClient().GetStatus()
		if err != nil {
			return err
		}
		if statusOpts.json {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		}
		printStatus(cmd.OutOrStdout(), status)
		return nil
	},
}

var sideCmd = &cobra.Command{
	Use:       "side <top|bottom|left|right>",
	Short:     "Dock the panel on a side of the focused window",
	Long:      "Select the dock side. This re-enables auto-positioning and ends any drag in progress.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"top", "bottom", "left", "right"},
	RunE: func(cmd *cobra.Command, args []string) error {
		side, err := dock.ParseSide(args[0])
		if err != nil {
			return err
		}
		pref, err := newClient().SetSide(side)
		if err != nil {
			return err
		}
		printPreference(cmd.OutOrStdout(), pref)
		return nil
	},
}

var dragCmd = &cobra.Command{
	Use:       "drag <start|end>",
	Short:     "Report that the user started or finished dragging the panel",
	Long:      "While a drag is in progress the panel stays where the user leaves it until a side is selected.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"start", "end"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		var (
			pref *ipc.PreferenceData
			err  error
		)
		switch args[0] {
		case "start":
			pref, err = client.DragStart()
		case "end":
			pref, err = client.DragEnd()
		default:
			return fmt.Errorf("unknown drag action %q (want start or end)", args[0])
		}
		if err != nil {
			return err
		}
		printPreference(cmd.OutOrStdout(), pref)
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:       "toggle <auto|visible>",
	Short:     "Toggle auto-positioning or panel visibility",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"auto", "visible"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		switch args[0] {
		case "auto":
			pref, err := client.ToggleAuto()
			if err != nil {
				return err
			}
			printPreference(cmd.OutOrStdout(), pref)
		case "visible":
			v, err := client.ToggleVisible()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "visible: %v\n", v.Visible)
		default:
			return fmt.Errorf("unknown toggle %q (want auto or visible)", args[0])
		}
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask the daemon to re-read its configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := newClient().Reload(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
		return nil
	},
}

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Stop the daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := newClient().Quit(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "daemon stopping")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, sideCmd, dragCmd, toggleCmd, reloadCmd, quitCmd)
	statusCmd.Flags().BoolVar(&statusOpts.json, "json", false, "Print status as JSON")
}

func formatRect(r *platform.Rect) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printStatus(w io.Writer, s *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running: %v\n", s.DaemonRunning)
	fmt.Fprintf(w, "backend:        %s\n", orDash(s.Backend))
	fmt.Fprintf(w, "app:            %s\n", orDash(s.App))
	fmt.Fprintf(w, "geometry:       %s\n", formatRect(s.Geometry))
	fmt.Fprintf(w, "side:           %s\n", s.Side)
	fmt.Fprintf(w, "auto_position:  %v\n", s.AutoPosition)
	fmt.Fprintf(w, "visible:        %v\n", s.Visible)
	fmt.Fprintf(w, "doc_app:        %s\n", orDash(s.DocApp))
	fmt.Fprintf(w, "doc_source:     %s\n", orDash(string(s.DocSource)))
	fmt.Fprintf(w, "panel:          %s\n", formatRect(s.PanelRect))
	fmt.Fprintf(w, "watchers:       %d\n", s.Watchers)
	fmt.Fprintf(w, "uptime_seconds: %d\n", s.UptimeSeconds)
}

func printPreference(w io.Writer, p *ipc.PreferenceData) {
	mode := "auto"
	if !p.AutoPosition {
		mode = "pinned"
	}
	fmt.Fprintf(w, "side: %s (%s)\n", p.Side, mode)
}
