package daemon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/ipc"
)

var _ ipc.Handler = (*Daemon)(nil)

// Handle answers an IPC request. The work runs on the loop; Handle only
// decodes the payload and waits for the reply.
func (d *Daemon) Handle(ctx context.Context, req *ipc.Request) *ipc.Response {
	var fn func() *ipc.Response

	switch req.Command {
	case ipc.CommandGetStatus:
		fn = d.handleGetStatus
	case ipc.CommandLookup:
		var p ipc.LookupPayload
		if err := req.DecodePayload(&p); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		fn = func() *ipc.Response { return d.handleLookup(p) }
	case ipc.CommandSetSide:
		var p ipc.SetSidePayload
		if err := req.DecodePayload(&p); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		side, err := dock.ParseSide(string(p.Side))
		if err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		fn = func() *ipc.Response { return d.handleSetSide(side) }
	case ipc.CommandDragStart:
		fn = d.handleDragStart
	case ipc.CommandDragEnd:
		fn = d.handleDragEnd
	case ipc.CommandToggleAuto:
		fn = d.handleToggleAuto
	case ipc.CommandToggleVisible:
		fn = func() *ipc.Response { return ipc.OK(ipc.VisibleData{Visible: d.toggleVisible()}) }
	case ipc.CommandReload:
		fn = d.handleReload
	case ipc.CommandQuit:
		fn = d.handleQuit
	default:
		return ipc.NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}

	var resp *ipc.Response
	if err := d.Post(ctx, func() { resp = fn() }); err != nil {
		return ipc.NewErrorResponse(err.Error())
	}
	return resp
}

func (d *Daemon) handleGetStatus() *ipc.Response {
	pref := d.ctrl.Preference()
	status := ipc.StatusData{
		Backend:       d.deps.Backend.Name(),
		App:           d.tracker.State().App(),
		Side:          pref.Side,
		AutoPosition:  pref.AutoPosition,
		Visible:       d.visible,
		DocApp:        d.docApp,
		DocSource:     d.docSource,
		PanelRect:     d.panelRect,
		UptimeSeconds: int64(d.deps.Now().Sub(d.started) / time.Second),
		DaemonRunning: true,
	}
	if d.lastSettled != nil {
		geom := d.lastSettled.Geometry
		status.Geometry = &geom
	}
	if d.deps.Watchers != nil {
		status.Watchers = d.deps.Watchers()
	}
	return ipc.OK(status)
}

// handleLookup shows documentation for a name the user typed. An empty name
// repeats the lookup for the app currently shown, which is how the panel
// asks for the online version.
func (d *Daemon) handleLookup(p ipc.LookupPayload) *ipc.Response {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = d.docApp
	}
	if name == "" {
		return ipc.NewErrorResponse("no command to look up")
	}
	d.deps.Surface.SetAppName(name)
	id := d.worker.Request(name, p.Online)
	d.logger.Info().Str("app", name).Bool("online", p.Online).Msg("manual lookup")
	return ipc.OK(ipc.LookupData{ID: id.String(), App: name})
}

func (d *Daemon) preference() ipc.PreferenceData {
	pref := d.ctrl.Preference()
	return ipc.PreferenceData{Side: pref.Side, AutoPosition: pref.AutoPosition}
}

func (d *Daemon) handleSetSide(side dock.Side) *ipc.Response {
	if d.ctrl.SelectSide(side) {
		d.preferenceChanged()
		d.redock()
	}
	return ipc.OK(d.preference())
}

func (d *Daemon) handleDragStart() *ipc.Response {
	if d.ctrl.DragStart() {
		d.preferenceChanged()
	}
	d.panelRect = nil
	return ipc.OK(d.preference())
}

func (d *Daemon) handleDragEnd() *ipc.Response {
	d.ctrl.DragEnd()
	return ipc.OK(d.preference())
}

func (d *Daemon) handleToggleAuto() *ipc.Response {
	if d.ctrl.ToggleAuto() {
		d.redock()
	}
	d.preferenceChanged()
	return ipc.OK(d.preference())
}

func (d *Daemon) handleReload() *ipc.Response {
	if err := d.applyReload(); err != nil {
		return ipc.NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	return ipc.OK(nil)
}

func (d *Daemon) handleQuit() *ipc.Response {
	d.logger.Info().Msg("quit requested")
	if d.cancel != nil {
		d.cancel()
	}
	return ipc.OK(nil)
}
