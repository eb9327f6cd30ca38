package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wingman-panel/wingman/internal/docs"
	"github.com/wingman-panel/wingman/internal/platform"
)

func (s *Server) handleGetDocumentation(ctx context.Context, _ *mcpsdk.CallToolRequest, args GetDocumentationInput) (*mcpsdk.CallToolResult, GetDocumentationOutput, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return nil, GetDocumentationOutput{}, errors.New("name is required")
	}

	var res docs.Result
	if args.Online {
		res = s.lookup.Online(ctx, name)
	} else {
		res = s.lookup.Get(ctx, name)
	}

	text, total, truncated := headLines(res.Text, clampLines(args.MaxLines))
	s.logger.Debug().
		Str("name", name).
		Str("source", string(res.Source)).
		Int("lines", total).
		Bool("truncated", truncated).
		Msg("get_documentation")

	return nil, GetDocumentationOutput{
		Name:       name,
		Source:     string(res.Source),
		Text:       text,
		TotalLines: total,
		Truncated:  truncated,
	}, nil
}

func (s *Server) handleActiveWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ActiveWindowInput) (*mcpsdk.CallToolResult, ActiveWindowOutput, error) {
	if s.backend == nil {
		return nil, ActiveWindowOutput{}, platform.ErrBackendUnavailable
	}

	snap, err := s.backend.ActiveWindow(ctx)
	if err != nil {
		return nil, ActiveWindowOutput{}, fmt.Errorf("active window query failed (backend %s): %w", s.backend.Name(), err)
	}

	out := ActiveWindowOutput{
		Backend:       s.backend.Name(),
		App:           snap.ProcessName,
		PID:           snap.PID,
		Geometry:      snap.Geometry,
		ShouldTrigger: s.filter.ShouldTrigger(snap.ProcessName),
	}
	if displays, err := s.backend.Displays(ctx); err == nil {
		if d, ok := platform.DisplayFor(displays, snap.Geometry); ok {
			out.Display = d.Name
		}
	}
	return nil, out, nil
}

func (s *Server) handleDockStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ DockStatusInput) (*mcpsdk.CallToolResult, DockStatusOutput, error) {
	if s.status == nil {
		return nil, DockStatusOutput{}, errors.New("daemon status is not available")
	}

	status, err := s.status.GetStatus()
	if err != nil {
		// A stopped daemon is an answer, not a tool failure.
		s.logger.Debug().Err(err).Msg("dock_status: daemon not reachable")
		return nil, DockStatusOutput{Running: false}, nil
	}

	return nil, DockStatusOutput{
		Running:       status.DaemonRunning,
		Side:          string(status.Side),
		AutoPosition:  status.AutoPosition,
		Visible:       status.Visible,
		App:           status.App,
		DocApp:        status.DocApp,
		DocSource:     string(status.DocSource),
		PanelRect:     status.PanelRect,
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}
