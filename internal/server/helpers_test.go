package server

import (
	"bytes"
	"errors"
	"io"
	"net"
	"sync"
	"time"
)

type logEntry struct {
	level  string
	msg    string
	fields []Field
}

// recordingLogger keeps every entry for later assertions
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields ...Field) { l.add("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields ...Field)  { l.add("info", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...Field) { l.add("error", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...Field)  { l.add("warn", msg, fields) }

// find returns the value of key on the first entry logged with msg
func (l *recordingLogger) find(msg, key string) (interface{}, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.msg != msg {
			continue
		}
		for _, f := range e.fields {
			if f.Key == key {
				return f.Value, true
			}
		}
	}
	return nil, false
}

func (l *recordingLogger) count(msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.msg == msg {
			n++
		}
	}
	return n
}

// fakeConn is an in-memory net.Conn that counts Close calls
type fakeConn struct {
	in         *bytes.Reader
	out        bytes.Buffer
	readErr    error
	writeErr   error
	writeLimit int // bytes a single Write accepts, 0 for no cap
	remote     net.Addr
	writes     int

	mu     sync.Mutex
	closes int
}

func newFakeConn(data string) *fakeConn {
	return &fakeConn{
		in:     bytes.NewReader([]byte(data)),
		remote: &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 50000},
	}
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if c.readErr != nil {
		return 0, c.readErr
	}
	return c.in.Read(p)
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.writes++
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	if c.writeLimit > 0 && len(p) > c.writeLimit {
		return c.out.Write(p[:c.writeLimit])
	}
	return c.out.Write(p)
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *fakeConn) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

func (c *fakeConn) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080}
}

func (c *fakeConn) RemoteAddr() net.Addr             { return c.remote }
func (c *fakeConn) SetDeadline(time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

type acceptResult struct {
	conn net.Conn
	err  error
}

// fakeListener hands out queued results, then reports itself closed
type fakeListener struct {
	mu      sync.Mutex
	results []acceptResult
	closed  bool
}

func (l *fakeListener) Accept() (net.Conn, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || len(l.results) == 0 {
		return nil, net.ErrClosed
	}
	r := l.results[0]
	l.results = l.results[1:]
	return r.conn, r.err
}

func (l *fakeListener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *fakeListener) Addr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080}
}

// tempError mimics a transient accept failure such as EMFILE
type tempError struct{}

func (tempError) Error() string   { return "too many open files" }
func (tempError) Timeout() bool   { return false }
func (tempError) Temporary() bool { return true }

var errBrokenPipe = errors.New("broken pipe")

// readAll drains conn until the server closes it
func readAll(conn net.Conn) (string, error) {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	b, err := io.ReadAll(conn)
	return string(b), err
}
