package server

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"sync/atomic"

	sockwrap "github.com/Brownie44l1/socket-wrapper"
)

// listenWildcard binds the dual-stack [::] candidate through socket-wrapper.
// The wrapper always binds every interface and reports the configured port
// rather than the one the kernel picked, so it only backs the IPv6
// wildcard candidate with an explicit port.
func listenWildcard(c Candidate, backlog int, logger Logger) (net.Listener, error) {
	cfg := sockwrap.DefaultConfig().
		WithPort(c.Port).
		WithBacklog(backlog).
		WithDeferAccept(0).
		WithLogger(wrapperLogger{logger: logger})

	// plain accept semantics: an idle client must still reach the
	// receive timeout
	cfg.NoDelay = false
	cfg.KeepAlive = false
	cfg.QuickAck = false
	cfg.FastOpen = false

	ln, err := sockwrap.Listen(cfg)
	if err != nil {
		return nil, err
	}
	return &wrappedListener{
		ln:   ln,
		addr: &net.TCPAddr{IP: net.IPv6unspecified, Port: c.Port},
	}, nil
}

// wrappedListener adapts a socket-wrapper listener to net.Listener
type wrappedListener struct {
	ln     sockwrap.Listener
	addr   *net.TCPAddr
	closed atomic.Bool
}

func (l *wrappedListener) Accept() (net.Conn, error) {
	c, err := l.ln.Accept()
	if err != nil {
		if l.closed.Load() || errors.Is(err, sockwrap.ErrListenerClosed) {
			return nil, net.ErrClosed
		}
		return nil, err
	}
	return &wrappedConn{
		Conn:   c,
		local:  l.addr,
		remote: parseTCPAddr(c.RemoteAddr()),
	}, nil
}

func (l *wrappedListener) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	return l.ln.Close()
}

func (l *wrappedListener) Addr() net.Addr {
	return l.addr
}

// wrappedConn adapts a socket-wrapper connection to net.Conn. The wrapper
// reports expired deadlines with its own sentinel; they are translated so
// callers can rely on net.Error.Timeout.
type wrappedConn struct {
	sockwrap.Conn
	local  net.Addr
	remote net.Addr
}

func (c *wrappedConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	return n, translateTimeout(err)
}

func (c *wrappedConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	return n, translateTimeout(err)
}

func (c *wrappedConn) LocalAddr() net.Addr {
	return c.local
}

func (c *wrappedConn) RemoteAddr() net.Addr {
	return c.remote
}

func translateTimeout(err error) error {
	if errors.Is(err, sockwrap.ErrTimeout) {
		return os.ErrDeadlineExceeded
	}
	return err
}

// parseTCPAddr turns the wrapper's textual peer address back into a
// *net.TCPAddr. IPv4 clients of the dual-stack socket arrive as mapped
// addresses and are unmapped.
func parseTCPAddr(s string) net.Addr {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return nil
	}
	return net.TCPAddrFromAddrPort(netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()))
}

// wrapperLogger feeds the wrapper's key/value diagnostics into Logger
type wrapperLogger struct {
	logger Logger
}

func (l wrapperLogger) Debug(msg string, kv ...any) { l.logger.Debug(msg, pairs(kv)...) }
func (l wrapperLogger) Info(msg string, kv ...any)  { l.logger.Info(msg, pairs(kv)...) }
func (l wrapperLogger) Error(msg string, kv ...any) { l.logger.Error(msg, pairs(kv)...) }

func pairs(kv []any) []Field {
	fields := make([]Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, Field{key, kv[i+1]})
	}
	return fields
}
