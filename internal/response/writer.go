package response

import (
	"fmt"
	"io"
)

// writerState tracks what's been staged so far
type writerState int

const (
	stateStart writerState = iota
	stateStatusWritten
	stateBodyWritten
	stateFlushed
)

// Writer stages a response and hands it to the underlying io.Writer in
// one Write on Flush.
type Writer struct {
	w          io.Writer
	state      writerState
	statusCode StatusCode
	body       []byte
	written    int
	hadError   bool
}

// NewWriter creates a new response writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:     w,
		state: stateStart,
	}
}

// WriteStatusLine stages the status code.
func (w *Writer) WriteStatusLine(code StatusCode) error {
	if w.state != stateStart {
		return fmt.Errorf("status line already written")
	}

	w.statusCode = code
	w.state = stateStatusWritten
	return nil
}

// WriteBody stages the response body. An empty body is allowed.
func (w *Writer) WriteBody(data []byte) error {
	if w.state != stateStatusWritten {
		return fmt.Errorf("must write status line before body")
	}

	w.body = data
	w.state = stateBodyWritten
	return nil
}

// Flush sends the staged status and body, rendered by Build, with a
// single Write.
func (w *Writer) Flush() error {
	switch w.state {
	case stateStart:
		return fmt.Errorf("must write status line before flushing")
	case stateFlushed:
		return fmt.Errorf("response already flushed")
	}

	out := Build(w.statusCode, w.body)
	n, err := w.w.Write(out)
	w.written = n
	w.state = stateFlushed
	if err != nil {
		w.hadError = true
		return err
	}
	if n < len(out) {
		w.hadError = true
		return io.ErrShortWrite
	}
	return nil
}

// WriteResponse stages r and flushes it.
func (w *Writer) WriteResponse(r Response) error {
	if err := w.WriteStatusLine(r.Status); err != nil {
		return err
	}
	if err := w.WriteBody(r.Body); err != nil {
		return err
	}
	return w.Flush()
}

// HadError reports whether Flush failed or wrote only part of the response.
func (w *Writer) HadError() bool {
	return w.hadError
}

func (w *Writer) StatusCode() StatusCode {
	return w.statusCode
}

// Written is the number of bytes accepted by the underlying writer.
func (w *Writer) Written() int {
	return w.written
}
