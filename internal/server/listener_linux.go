package server

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"os"

	"golang.org/x/sys/unix"
)

// listenOn binds c. The IPv6 wildcard with an explicit port goes through
// socket-wrapper; everything else is bound directly.
func listenOn(_ context.Context, c Candidate, backlog int, logger Logger) (net.Listener, error) {
	if c.IP == netip.IPv6Unspecified() && c.Port != 0 {
		return listenWildcard(c, backlog, logger)
	}
	return listenRaw(c, backlog)
}

// listenRaw creates, configures, binds and listens on a socket for c. The
// socket is closed again if any step fails.
func listenRaw(c Candidate, backlog int) (net.Listener, error) {
	family := unix.AF_INET6
	if c.IP.Is4() {
		family = unix.AF_INET
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}

	ok := false
	defer func() {
		if !ok {
			unix.Close(fd)
		}
	}()

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return nil, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}

	var sa unix.Sockaddr
	if family == unix.AF_INET {
		sa = &unix.SockaddrInet4{Port: c.Port, Addr: c.IP.As4()}
	} else {
		sa = &unix.SockaddrInet6{Port: c.Port, Addr: c.IP.As16()}
	}
	if err := unix.Bind(fd, sa); err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}

	if err := unix.Listen(fd, backlog); err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	// FileListener dups the descriptor, so the *os.File is closed either way.
	f := os.NewFile(uintptr(fd), "tcp:"+c.String())
	ok = true
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("file listener: %w", err)
	}
	return ln, nil
}
