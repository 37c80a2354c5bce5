package response

import "io"

// Build assembles the status line, the body separator and body into a
// single buffer. No Content-Length is declared; the peer reads until the
// connection closes.
func Build(code StatusCode, body []byte) []byte {
	line := StatusLine(code)
	out := make([]byte, 0, len(line)+len(Separator)+len(body))
	out = append(out, line...)
	out = append(out, Separator...)
	out = append(out, body...)
	return out
}

// Send writes r to w with a single Write call.
func Send(w io.Writer, r Response) error {
	return NewWriter(w).WriteResponse(r)
}
