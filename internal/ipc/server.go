package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/hlbar/internal/bar"
)

// Controller is the part of the bar state the socket acts on.
type Controller interface {
	bar.Signaler
	Geometry() bar.Geometry
	Layout() bar.Layout
	Pending() bool
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	ctl        Controller
	quit       func()
	logger     *slog.Logger
	startTime  time.Time
}

// NewServer creates a server on socketPath. quit is called on QUIT and may
// be nil.
func NewServer(socketPath string, ctl Controller, quit func(), logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		ctl:        ctl,
		quit:       quit,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// Run listens until ctx is cancelled, then removes the socket. A stale
// socket left by a crashed bar is replaced; the caller must hold the
// monitor lock.
func (s *Server) Run(ctx context.Context) error {
	// Remove existing socket if present
	os.Remove(s.socketPath)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create control socket: %w", err)
	}
	defer os.Remove(s.socketPath)

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("control socket listening", "path", s.socketPath)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("control socket accept failed", "error", err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("control socket read failed", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	s.send(conn, s.handleCommand(req))
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("control command", "command", req.Command)
	switch req.Command {
	case CommandRedraw:
		s.ctl.RequestRedraw()
		resp, _ := NewOKResponse(nil)
		return resp
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandQuit:
		if s.quit == nil {
			return NewErrorResponse("quit is not supported")
		}
		s.logger.Info("quit requested over control socket")
		s.quit()
		resp, _ := NewOKResponse(nil)
		return resp
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	g := s.ctl.Geometry()
	layout := s.ctl.Layout()
	status := StatusData{
		Monitor:       g.Monitor,
		X:             g.X,
		Y:             g.Y,
		Width:         g.Width,
		Height:        g.Height,
		Global:        moduleNames(layout.Global),
		Left:          moduleNames(layout.Left),
		Right:         moduleNames(layout.Right),
		RedrawPending: s.ctl.Pending(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}
	resp, err := NewOKResponse(status)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func moduleNames(mods []bar.Module) []string {
	names := make([]string, 0, len(mods))
	for _, m := range mods {
		names = append(names, m.Name())
	}
	return names
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal control response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Debug("failed to send control response", "error", err)
	}
}
