package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wingman-panel/wingman/internal/appfilter"
	"github.com/wingman-panel/wingman/internal/focus"
	"github.com/wingman-panel/wingman/internal/platform"
)

var focusOpts struct {
	follow bool
}

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Show the focused window as the daemon sees it",
	Long: `Query the display backend for the focused window, with terminal
emulators resolved to their foreground command.

With --follow, print app changes and settled geometries until interrupted,
using the configured poll interval and stable threshold.`,
	Args: cobra.NoArgs,
	RunE: runFocus,
}

func init() {
	rootCmd.AddCommand(focusCmd)
	focusCmd.Flags().BoolVarP(&focusOpts.follow, "follow", "f", false,
		"Keep tracking focus changes")
}

func runFocus(cmd *cobra.Command, _ []string) error {
	res, _, loadErr := loadConfig()
	cfg := res.Config

	logger, err := newLogger(cfg, globalOpts.debug, "")
	if err != nil {
		return err
	}
	defer logger.Close()
	logLoad(logger.Component("config"), res, loadErr)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := openEnvironment(ctx, cfg, logger.Component("platform"))
	defer env.Close()

	out := cmd.OutOrStdout()
	filter := cfg.AppFilter()

	if !focusOpts.follow {
		snap, err := env.backend.ActiveWindow(ctx)
		if err != nil {
			return err
		}
		displays, err := env.backend.Displays(ctx)
		if err != nil {
			displays = nil
		}
		printSnapshot(out, env.backend.Name(), snap, displays, filter)
		return nil
	}

	tracker := focus.NewTracker(env.backend, cfg.Tracker.PollInterval, cfg.Tracker.StableThreshold, logger.Component("focus"))
	fmt.Fprintf(out, "following focus on %s (Ctrl+C to stop)\n", env.backend.Name())
	err = tracker.Run(ctx, func(o focus.Output) {
		if o.AppChanged {
			fmt.Fprintf(out, "app      %s  trigger=%v\n", orDash(o.AppName), filter.ShouldTrigger(o.AppName))
		}
		if o.Settled != nil {
			g := o.Settled.Geometry
			fmt.Fprintf(out, "settled  %s  %s\n", o.Settled.AppName, formatRect(&g))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printSnapshot(w io.Writer, backend string, snap platform.Snapshot, displays []platform.Display, filter appfilter.Filter) {
	display := "-"
	if d, ok := platform.DisplayFor(displays, snap.Geometry); ok {
		display = d.Name
	}
	fmt.Fprintf(w, "backend:  %s\n", backend)
	fmt.Fprintf(w, "app:      %s\n", orDash(snap.ProcessName))
	fmt.Fprintf(w, "pid:      %d\n", snap.PID)
	fmt.Fprintf(w, "geometry: %s\n", formatRect(&snap.Geometry))
	fmt.Fprintf(w, "display:  %s\n", display)
	fmt.Fprintf(w, "trigger:  %v\n", filter.ShouldTrigger(snap.ProcessName))
}
