package request

// Raw is the bytes taken from a single receive on a connection.
type Raw []byte

// Request is the parsed form of a Raw request. Only the request line is
// interpreted; every following line is kept verbatim in Lines.
type Request struct {
	Method  string
	Target  string
	Version string
	Lines   []string
}

// HasTarget reports whether the request line carried a target token.
func (r *Request) HasTarget() bool {
	return r.Target != ""
}

// RequestLine renders the interpreted tokens back into a single line.
func (r *Request) RequestLine() string {
	line := r.Method
	if r.Target != "" {
		line += " " + r.Target
	}
	if r.Version != "" {
		line += " " + r.Version
	}
	return line
}
