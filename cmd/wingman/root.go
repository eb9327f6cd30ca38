package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wingman-panel/wingman/internal/config"
	"github.com/wingman-panel/wingman/internal/logging"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var globalOpts struct {
	debug      bool
	logFile    string
	configPath string
}

var rootCmd = &cobra.Command{
	Use:   "wingman",
	Short: "Documentation panel that follows the focused window",
	Long: `wingman watches which window has focus, looks up documentation for the
program running in it, and docks a small panel beside that window.

Run 'wingman daemon' to start tracking, then 'wingman watch' in a spare
terminal to render the panel.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&globalOpts.debug, "debug", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.logFile, "log-file", "",
		"Also append logs to this file")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/wingman/config.yaml)")
}

// configPath resolves --config or the default location.
func configPath() (string, error) {
	if globalOpts.configPath != "" {
		return globalOpts.configPath, nil
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the configuration, falling back to defaults when the
// file is unreadable. The returned error is informational only.
func loadConfig() (*config.LoadResult, string, error) {
	path, err := configPath()
	if err != nil {
		return &config.LoadResult{Config: config.DefaultConfig()}, "", err
	}
	res, err := config.Load(path)
	return res, path, err
}

// newLogger builds the command logger. Console output is written to stderr
// so stdout stays clean for command output and the MCP transport.
func newLogger(cfg *config.Config, console bool, defaultFile string) (*logging.Logger, error) {
	level := zerolog.InfoLevel
	if cfg != nil {
		if l, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			level = l
		}
	}
	if globalOpts.debug {
		level = zerolog.DebugLevel
	}

	file := globalOpts.logFile
	if file == "" {
		file = defaultFile
	}
	return logging.New(logging.Options{
		Level:   level,
		Console: console,
		File:    file,
	})
}

// logLoad reports an unreadable config and any values reset to defaults.
func logLoad(logger zerolog.Logger, res *config.LoadResult, err error) {
	if err != nil {
		logger.Warn().Err(err).Msg("using default configuration")
	}
	if res == nil {
		return
	}
	for _, w := range res.Warnings {
		logger.Warn().Err(w).Msg("config value reset to default")
	}
}
