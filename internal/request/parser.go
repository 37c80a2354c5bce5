package request

import (
	"bytes"
	"fmt"
)

// parserState tracks how far Parse got through a Raw request.
type parserState int

const (
	stateRequestLine parserState = iota
	stateLines
	stateDone
)

// parser walks the lines of a single Raw request
type parser struct {
	state parserState
	lines []string
}

// Parse extracts the method and target from raw. Raw is treated like a C
// string: anything after the first NUL byte is ignored.
//
// A request with no lines, or whose first line has no tokens, yields
// ErrMalformedRequestLine and must not be dispatched.
func Parse(raw Raw) (*Request, error) {
	data := []byte(raw)
	if idx := bytes.IndexByte(data, 0); idx != -1 {
		data = data[:idx]
	}

	p := &parser{
		state: stateRequestLine,
		lines: splitLines(data),
	}
	req := &Request{}

	for p.state != stateDone {
		if err := p.step(req); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func (p *parser) step(req *Request) error {
	switch p.state {
	case stateRequestLine:
		if len(p.lines) == 0 {
			return ErrMalformedRequestLine
		}
		method, target, version, err := parseRequestLine(p.lines[0])
		if err != nil {
			return err
		}
		req.Method = method
		req.Target = target
		req.Version = version
		p.state = stateLines

	case stateLines:
		// header lines are carried along but never interpreted
		if len(p.lines) > 1 {
			req.Lines = append(req.Lines, p.lines[1:]...)
		}
		p.state = stateDone

	case stateDone:
		return nil

	default:
		return fmt.Errorf("invalid parser state: %d", p.state)
	}
	return nil
}
