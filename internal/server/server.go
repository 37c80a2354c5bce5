package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Brownie44l1/staticd/internal/request"
	"github.com/Brownie44l1/staticd/internal/response"
)

// ErrServerClosed is returned by Serve after Close or context cancellation.
var ErrServerClosed = errors.New("server closed")

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Dispatcher produces the response for a parsed request.
type Dispatcher interface {
	Dispatch(req *request.Request) response.Response
}

// Server accepts one connection at a time and fully handles it before
// accepting the next. There is no per-connection goroutine.
type Server struct {
	Logger  Logger
	Metrics *Metrics

	cfg        Config
	dispatcher Dispatcher
	buffers    *bufferPool

	mu       sync.Mutex
	listener net.Listener
	closed   atomic.Bool
}

// New creates a server. A nil logger discards diagnostics.
func New(cfg Config, dispatcher Dispatcher, logger Logger) *Server {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = &NullLogger{}
	}
	return &Server{
		Logger:     logger,
		Metrics:    NewMetrics(),
		cfg:        cfg,
		dispatcher: dispatcher,
		buffers:    newBufferPool(cfg.MaxRequestBytes),
	}
}

// ListenAndServe binds the configured address and serves until ctx is
// cancelled. A bind failure is returned as a BindError.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ep, err := Bind(ctx, s.cfg, s.Logger)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ep.Listener)
}

// acceptState is a step of the accept loop
type acceptState int

const (
	stateListening acceptState = iota
	stateAccepted
	stateAcceptFailed
)

// Serve runs the accept loop on ln. Accept failures are logged and
// retried with a growing delay; only closing the listener ends the loop.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	if s.closed.Load() {
		ln.Close()
		return ErrServerClosed
	}

	stop := context.AfterFunc(ctx, func() {
		s.Close()
	})
	defer stop()

	var (
		state     = stateListening
		conn      net.Conn
		acceptErr error
		delay     time.Duration
	)

	for {
		switch state {
		case stateListening:
			conn, acceptErr = ln.Accept()
			if acceptErr != nil {
				state = stateAcceptFailed
				continue
			}
			state = stateAccepted

		case stateAccepted:
			delay = 0
			s.serveConn(conn)
			conn = nil
			state = stateListening

		case stateAcceptFailed:
			if s.closed.Load() {
				return ErrServerClosed
			}
			if errors.Is(acceptErr, net.ErrClosed) {
				return acceptErr
			}

			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay *= 2
			}
			if delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}

			s.Metrics.AcceptErrors.Add(1)
			s.Logger.Error("failed to accept connection",
				Field{"error", acceptErr},
				Field{"retry_in", delay.String()},
			)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			state = stateListening
		}
	}
}

// Close stops the accept loop by closing the listener. The connection
// in flight, if any, is finished first.
func (s *Server) Close() error {
	s.closed.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}
