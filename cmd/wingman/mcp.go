package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wingman-panel/wingman/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	Long: `Start the MCP server on stdio. Designed to be invoked by MCP clients.

Tools: get_documentation, active_window, dock_status.
Logs go to --log-file only; stdout carries the protocol.`,
	Example: `  claude mcp add wingman -- wingman mcp serve`,
	Args:    cobra.NoArgs,
	RunE:    runMCPServe,
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	res, _, loadErr := loadConfig()
	cfg := res.Config

	logger, err := newLogger(cfg, false, "")
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

	server, err := mcp.NewServer(mcp.Options{
		Lookup:  newDocResolver(cfg, env.runner, logger.Component("docs")),
		Backend: env.backend,
		Status:  newClient(),
		Filter:  cfg.AppFilter(),
		Logger:  logger.Component("mcp"),
	})
	if err != nil {
		return err
	}
	return server.Run(ctx)
}
