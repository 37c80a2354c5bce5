//go:build !linux

package server

import (
	"context"
	"net"
)

// listenOn falls back to the runtime's listener, which enables address
// reuse itself but takes the backlog from the OS.
func listenOn(ctx context.Context, c Candidate, _ int, _ Logger) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, c.Network(), c.String())
}
