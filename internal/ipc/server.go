package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/wingman-panel/wingman/internal/panel"
)

// ErrAlreadyRunning is returned by Listen when another daemon answers on the
// socket.
var ErrAlreadyRunning = errors.New("daemon already running")

// Handler answers one request. Implementations must be safe for concurrent
// use; every connection is served on its own goroutine.
type Handler interface {
	Handle(ctx context.Context, req *Request) *Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req *Request) *Response

func (f HandlerFunc) Handle(ctx context.Context, req *Request) *Response { return f(ctx, req) }

// Subscriber is the event source behind WATCH.
type Subscriber interface {
	Subscribe() (<-chan panel.Event, func())
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	events       Subscriber
	logger       zerolog.Logger
	shuttingDown bool
	shutdownMu   sync.Mutex
	conns        sync.WaitGroup
}

// NewServer creates a new IPC server. events may be nil, in which case WATCH
// is rejected.
func NewServer(socketPath string, handler Handler, events Subscriber, logger zerolog.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		events:     events,
		logger:     logger,
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Listen creates the socket. A stale socket file left by a dead daemon is
// removed; a live one yields ErrAlreadyRunning.
func (s *Server) Listen() error {
	if conn, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond); err == nil {
		conn.Close()
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, s.socketPath)
	}
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info().Str("socket", s.socketPath).Msg("IPC server listening")
	return nil
}

// Serve accepts connections until ctx is cancelled, then closes the listener,
// removes the socket and waits for open connections to finish.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.acceptLoop(ctx)
	s.conns.Wait()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn().Err(err).Msg("IPC accept error")
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug().Err(err).Msg("IPC read error")
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	if req.Command == CommandWatch {
		s.handleWatch(ctx, conn, reader)
		return
	}

	s.send(conn, s.handleCommand(ctx, req))
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug().Str("command", string(req.Command)).Msg("IPC request")
	if s.handler == nil {
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
	resp := s.handler.Handle(ctx, req)
	if resp == nil {
		return NewErrorResponse(fmt.Sprintf("No response for command: %s", req.Command))
	}
	return resp
}

// handleWatch acknowledges the request and then streams panel events as
// JSON lines until the client disconnects or the server stops.
func (s *Server) handleWatch(ctx context.Context, conn net.Conn, reader *bufio.Reader) {
	if s.events == nil {
		s.send(conn, NewErrorResponse("WATCH is not available"))
		return
	}
	events, cancel := s.events.Subscribe()
	defer cancel()

	if !s.send(conn, OK(nil)) {
		return
	}

	// The client never writes after the request; a read returning means it
	// hung up.
	gone := make(chan struct{})
	go func() {
		io.Copy(io.Discard, reader)
		close(gone)
	}()

	enc := json.NewEncoder(conn)
	for {
		select {
		case <-ctx.Done():
			return
		case <-gone:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := enc.Encode(ev); err != nil {
				s.logger.Debug().Err(err).Msg("watch client write failed")
				return
			}
		}
	}
}

// send writes one response line and reports whether it succeeded.
func (s *Server) send(conn net.Conn, resp *Response) bool {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal response")
		return false
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to send response")
		return false
	}
	return true
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
