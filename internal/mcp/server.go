// Package mcp exposes wingman's documentation lookup and focus state as
// Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"errors"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/wingman-panel/wingman/internal/appfilter"
	"github.com/wingman-panel/wingman/internal/docs"
	"github.com/wingman-panel/wingman/internal/ipc"
	"github.com/wingman-panel/wingman/internal/platform"
)

const (
	ServerName    = "wingman"
	ServerVersion = "0.1.0"
)

// StatusSource reports the running daemon's state.
type StatusSource interface {
	GetStatus() (*ipc.StatusData, error)
}

// Options wires the server's collaborators. Backend and Status may be nil;
// the tools that need them then report an error.
type Options struct {
	Lookup  docs.Lookup
	Backend platform.Backend
	Status  StatusSource
	Filter  appfilter.Filter
	Logger  zerolog.Logger
}

// Server is the MCP server for documentation lookups.
type Server struct {
	mcpServer *mcpsdk.Server
	lookup    docs.Lookup
	backend   platform.Backend
	status    StatusSource
	filter    appfilter.Filter
	logger    zerolog.Logger
}

// NewServer creates the MCP server and registers its tools.
func NewServer(opts Options) (*Server, error) {
	if opts.Lookup == nil {
		return nil, errors.New("mcp server needs a documentation lookup")
	}

	s := &Server{
		lookup:  opts.Lookup,
		backend: opts.Backend,
		status:  opts.Status,
		filter:  opts.Filter,
		logger:  opts.Logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info().Msg("MCP server starting on stdio")
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_documentation",
		Description: "Get plain-text documentation for a command. Tries the man page, then --help, then -h, and falls back to a short not-found message. Set online to fetch the configured web page instead. Returns the first max_lines lines (default 200).",
	}, s.handleGetDocumentation)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "active_window",
		Description: "Report the currently focused window: the resolved app name (the foreground command for terminal windows), its pid, its frame geometry and whether wingman would look up documentation for it.",
	}, s.handleActiveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "dock_status",
		Description: "Report the running wingman daemon's dock state: side, auto-positioning, visibility, the app being documented and the panel rectangle.",
	}, s.handleDockStatus)
}
