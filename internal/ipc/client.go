package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/panel"
	"github.com/wingman-panel/wingman/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithPath(socketPath)
}

// NewClientWithPath creates a client for an explicit socket path.
func NewClientWithPath(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) dial() (net.Conn, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	return conn, nil
}

func writeRequest(conn net.Conn, req *Request) error {
	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func readResponse(reader *bufio.Reader) (*Response, error) {
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == StatusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := writeRequest(conn, req); err != nil {
		return nil, err
	}
	return readResponse(bufio.NewReader(conn))
}

// call sends a command with an optional payload and decodes the reply data
// into out when out is non-nil.
func (c *Client) call(cmd CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = raw
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Lookup asks the daemon to show documentation for name in the panel.
func (c *Client) Lookup(name string, online bool) (*LookupData, error) {
	var data LookupData
	if err := c.call(CommandLookup, LookupPayload{Name: name, Online: online}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SetSide picks a dock side and re-enables auto-positioning.
func (c *Client) SetSide(side dock.Side) (*PreferenceData, error) {
	var data PreferenceData
	if err := c.call(CommandSetSide, SetSidePayload{Side: side}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DragStart reports that the user started dragging the panel.
func (c *Client) DragStart() (*PreferenceData, error) {
	var data PreferenceData
	if err := c.call(CommandDragStart, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DragEnd reports that the drag finished.
func (c *Client) DragEnd() (*PreferenceData, error) {
	var data PreferenceData
	if err := c.call(CommandDragEnd, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ToggleAuto flips auto-positioning.
func (c *Client) ToggleAuto() (*PreferenceData, error) {
	var data PreferenceData
	if err := c.call(CommandToggleAuto, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ToggleVisible shows or hides the panel.
func (c *Client) ToggleVisible() (*VisibleData, error) {
	var data VisibleData
	if err := c.call(CommandToggleVisible, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// Quit asks the daemon to shut down.
func (c *Client) Quit() error {
	return c.call(CommandQuit, nil, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}

// Watch streams panel events to fn until ctx is cancelled or the daemon
// closes the stream. A clean end of stream returns nil.
func (c *Client) Watch(ctx context.Context, fn func(panel.Event)) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := writeRequest(conn, &Request{Command: CommandWatch}); err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Time{})

	reader := bufio.NewReader(conn)
	if _, err := readResponse(reader); err != nil {
		return err
	}

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("watch stream: %w", err)
		}
		var ev panel.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return fmt.Errorf("failed to parse event: %w", err)
		}
		fn(ev)
	}
}
