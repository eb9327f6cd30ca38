package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wingman-panel/wingman/internal/config"
	"github.com/wingman-panel/wingman/internal/daemon"
	"github.com/wingman-panel/wingman/internal/docs"
	"github.com/wingman-panel/wingman/internal/hotkeys"
	"github.com/wingman-panel/wingman/internal/ipc"
	"github.com/wingman-panel/wingman/internal/logging"
	"github.com/wingman-panel/wingman/internal/panel"
	"github.com/wingman-panel/wingman/internal/platform"
	"github.com/wingman-panel/wingman/internal/procexec"
	"github.com/wingman-panel/wingman/internal/runtimepath"
	"github.com/wingman-panel/wingman/internal/terminals"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the wingman daemon (foreground)",
	Long: `Start the daemon in the foreground.

The daemon polls the focused window, looks up documentation for the program
in it and docks the panel beside it. Renderers attach over the control
socket; see 'wingman watch'.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

// environment is the backend stack shared by the daemon, focus and mcp
// commands.
type environment struct {
	runner    procexec.ExecRunner
	raw       platform.Backend
	backend   platform.Backend
	terminals *terminals.Resolver
}

// openEnvironment selects the display backend once and wraps it with
// terminal resolution. raw is kept for components that need the concrete
// backend type.
func openEnvironment(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *environment {
	runner := procexec.NewExecRunner(cfg.Docs.Timeout)
	raw := platform.Select(ctx, os.Getenv, platform.DefaultProbes(runner), logger)
	resolver := terminals.NewResolver(cfg.Terminals, terminals.SystemTable{})
	return &environment{
		runner:    runner,
		raw:       raw,
		backend:   platform.WithTerminalResolution(raw, resolver),
		terminals: resolver,
	}
}

func (e *environment) Close() {
	if d, ok := e.raw.(interface{ Disconnect() }); ok {
		d.Disconnect()
	}
}

func newDocResolver(cfg *config.Config, runner procexec.Runner, logger zerolog.Logger) *docs.Resolver {
	return docs.NewResolver(runner,
		docs.WithManWidth(cfg.Docs.ManWidth),
		docs.WithOnline(docs.NewHTTPFetcher(cfg.Docs.OnlineURL, cfg.Docs.Timeout)),
		docs.WithLogger(logger),
	)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	res, path, loadErr := loadConfig()
	cfg := res.Config

	defaultLog, err := logging.DefaultLogPath()
	if err != nil {
		defaultLog = ""
	}
	logger, err := newLogger(cfg, true, defaultLog)
	if err != nil {
		return err
	}
	defer logger.Close()

	log := logger.Component("daemon")
	logLoad(log, res, loadErr)
	log.Info().Str("config", path).Str("side", string(cfg.Dock.Side)).Bool("auto_position", cfg.Dock.AutoPosition).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	env := openEnvironment(ctx, cfg, logger.Component("platform"))
	defer env.Close()

	lookup := newDocResolver(cfg, env.runner, logger.Component("docs"))

	hub := panel.NewHub()
	defer hub.Close()

	surface := panel.Multi{hub, panel.LogSurface{Logger: logger.Component("panel")}}
	mover := panel.MoverFor(env.raw, env.runner, logger.Component("panel"))
	if mover != nil {
		surface = append(surface, mover)
	} else {
		log.Warn().Str("backend", env.raw.Name()).Msg("backend cannot move windows; panel position is reported to watchers only")
	}

	d := daemon.New(cfg, daemon.Deps{
		Backend: env.backend,
		Lookup:  lookup,
		Surface: surface,
		Logger:  logger.Component("daemon"),
		Load: func() (*config.Config, error) {
			res, err := config.Load(path)
			if err != nil {
				return nil, err
			}
			logLoad(log, res, nil)
			return res.Config, nil
		},
		Save: func(c *config.Config) error {
			return c.Save(path)
		},
		Terminals: env.terminals,
		Watchers:  hub.Subscribers,
	})

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return fmt.Errorf("failed to resolve socket path: %w", err)
	}
	server := ipc.NewServer(socketPath, d, hub, logger.Component("ipc"))
	if err := server.Listen(); err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			return fmt.Errorf("%w (socket %s)", err, socketPath)
		}
		return err
	}
	defer server.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// QUIT ends the loop; take everything else down with it.
		defer cancel()
		return d.Run(gctx)
	})
	g.Go(func() error {
		return server.Serve(gctx)
	})
	if mover != nil {
		g.Go(func() error {
			return mover.Run(gctx)
		})
	}

	if watcher, err := config.NewWatcher(path, logger.Component("config")); err != nil {
		log.Warn().Err(err).Msg("config hot reload disabled")
	} else {
		g.Go(func() error {
			return watcher.Run(gctx, d.RequestReload)
		})
	}

	if cfg.ToggleHotkey != "" {
		h, err := hotkeys.NewHandler(env.raw, logger.Component("hotkeys"))
		switch {
		case errors.Is(err, hotkeys.ErrUnsupported):
			log.Info().Msg("global hotkeys unavailable; bind 'wingman toggle visible' in your compositor")
		case err != nil:
			log.Warn().Err(err).Msg("hotkeys disabled")
		default:
			if err := h.RegisterToggle(cfg.ToggleHotkey, func() { d.ToggleVisible(gctx) }); err != nil {
				log.Warn().Err(err).Msg("toggle hotkey disabled")
			} else {
				g.Go(func() error {
					return h.Run(gctx)
				})
			}
		}
	}

	log.Info().Str("backend", env.backend.Name()).Str("socket", socketPath).Msg("wingman daemon started")
	err = g.Wait()
	log.Info().Msg("wingman daemon stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
