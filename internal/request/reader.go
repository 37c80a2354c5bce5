package request

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// DefaultMaxBytes is the capacity of the receive buffer.
const DefaultMaxBytes = 1024

// ErrEmptyRequest means the peer closed the connection without sending
// anything.
var ErrEmptyRequest = errors.New("no request received")

// ReadError wraps a failed receive.
type ReadError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ReadError) Error() string {
	return fmt.Sprintf("failed to receive request: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ReadError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the receive hit its deadline.
func (e ReadError) Timeout() bool {
	var ne net.Error
	return errors.As(e.Cause, &ne) && ne.Timeout()
}

// Read performs exactly one receive from conn into buf. It does not loop:
// a request larger than buf is truncated to whatever the first read
// returned.
//
// A timeout of zero leaves the connection's deadline untouched.
func Read(conn net.Conn, buf []byte, timeout time.Duration) (Raw, error) {
	if timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, ReadError{Cause: err}
		}
	}

	n, err := conn.Read(buf)
	if errors.Is(err, io.EOF) && n == 0 {
		return nil, ErrEmptyRequest
	}
	if err != nil {
		return nil, ReadError{Cause: err}
	}
	if n == 0 {
		return nil, ErrEmptyRequest
	}
	return Raw(buf[:n]), nil
}
