package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/docs"
	"github.com/wingman-panel/wingman/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandLookup        CommandType = "LOOKUP"
	CommandSetSide       CommandType = "SET_SIDE"
	CommandDragStart     CommandType = "DRAG_START"
	CommandDragEnd       CommandType = "DRAG_END"
	CommandToggleAuto    CommandType = "TOGGLE_AUTO"
	CommandToggleVisible CommandType = "TOGGLE_VISIBLE"
	CommandReload        CommandType = "RELOAD"
	CommandWatch         CommandType = "WATCH"
	CommandQuit          CommandType = "QUIT"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Backend       string         `json:"backend"`
	App           string         `json:"app,omitempty"`
	Geometry      *platform.Rect `json:"geometry,omitempty"`
	Side          dock.Side      `json:"side"`
	AutoPosition  bool           `json:"auto_position"`
	Visible       bool           `json:"visible"`
	DocApp        string         `json:"doc_app,omitempty"`
	DocSource     docs.Source    `json:"doc_source,omitempty"`
	PanelRect     *platform.Rect `json:"panel_rect,omitempty"`
	Watchers      int            `json:"watchers"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	DaemonRunning bool           `json:"daemon_running"`
}

// LookupPayload asks the daemon to show documentation for a command name.
type LookupPayload struct {
	Name   string `json:"name"`
	Online bool   `json:"online,omitempty"`
}

// LookupData identifies the queued lookup.
type LookupData struct {
	ID  string `json:"id"`
	App string `json:"app"`
}

type SetSidePayload struct {
	Side dock.Side `json:"side"`
}

// PreferenceData is returned by commands that change the dock preference.
type PreferenceData struct {
	Side         dock.Side `json:"side"`
	AutoPosition bool      `json:"auto_position"`
}

type VisibleData struct {
	Visible bool `json:"visible"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// OK is NewOKResponse for handlers that cannot fail to marshal; a marshal
// failure becomes an error response.
func OK(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: missing command")
	}
	return &req, nil
}

// DecodePayload unmarshals the request payload into v.
func (r *Request) DecodePayload(v interface{}) error {
	if len(r.Payload) == 0 {
		return fmt.Errorf("missing payload for %s", r.Command)
	}
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return fmt.Errorf("invalid payload for %s: %w", r.Command, err)
	}
	return nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
