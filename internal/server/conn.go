package server

import (
	"errors"
	"net"
	"time"

	"github.com/Brownie44l1/staticd/internal/request"
	"github.com/Brownie44l1/staticd/internal/response"
)

// serveConn handles the single request carried by conn. conn is closed
// exactly once on every path out of here.
func (s *Server) serveConn(conn net.Conn) {
	peer := peerAddr(conn)
	defer s.closeConn(conn, peer)

	s.Metrics.ConnectionsTotal.Add(1)
	s.Metrics.ActiveConnections.Add(1)
	defer s.Metrics.ActiveConnections.Add(-1)

	s.Logger.Info("connection accepted", Field{"peer", peer})

	buf := s.buffers.Get()
	defer s.buffers.Put(buf)

	raw, err := request.Read(conn, buf, s.cfg.ReceiveTimeout)
	if err != nil {
		s.abandon(peer, err)
		return
	}

	req, err := request.Parse(raw)
	if err != nil {
		s.abandon(peer, err)
		return
	}

	res := s.handleRequest(req)

	w := response.NewWriter(conn)
	err = w.WriteResponse(res)
	if w.HadError() {
		s.Metrics.WriteErrors.Add(1)
		s.Logger.Warn("failed to send response",
			Field{"peer", peer},
			Field{"status", int(w.StatusCode())},
			Field{"written", w.Written()},
			Field{"error", err},
		)
	}
}

// handleRequest wraps dispatch with panic recovery
func (s *Server) handleRequest(req *request.Request) (res response.Response) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("handler panic",
				Field{"panic", r},
				Field{"request_line", req.RequestLine()},
			)
			s.Metrics.RecordRequest(response.StatusInternalServerError, time.Since(start))
			res = response.New(response.StatusInternalServerError, nil)
		}
	}()

	return s.dispatcher.Dispatch(req)
}

// abandon drops a connection without sending anything back
func (s *Server) abandon(peer string, err error) {
	s.Metrics.Abandoned.Add(1)

	reason := "no request received"
	var readErr request.ReadError
	switch {
	case errors.Is(err, request.ErrMalformedRequestLine):
		reason = "malformed request line"
	case errors.As(err, &readErr) && readErr.Timeout():
		reason = "receive timed out"
	}

	s.Logger.Warn("abandoning connection",
		Field{"peer", peer},
		Field{"reason", reason},
		Field{"error", err},
	)
}

func (s *Server) closeConn(conn net.Conn, peer string) {
	if err := conn.Close(); err != nil {
		s.Logger.Debug("failed to close connection",
			Field{"peer", peer},
			Field{"error", err},
		)
	}
}

// peerAddr returns the textual IPv4 or IPv6 address of the remote end
func peerAddr(conn net.Conn) string {
	addr := conn.RemoteAddr()
	if addr == nil {
		return "unknown"
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	return addr.String()
}
