package response

// StatusCode represents HTTP status codes
type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusBadRequest          StatusCode = 400
	StatusNotFound            StatusCode = 404
	StatusInternalServerError StatusCode = 500
)

// statusText maps status codes to reason phrases
var statusText = map[StatusCode]string{
	StatusOK:                  "OK",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusInternalServerError: "Internal Server Error",
}

// Separator ends the status line and marks the start of the body.
const Separator = "\r\n\r\n"

// Response is a status plus an optional body, built fresh per request.
type Response struct {
	Status StatusCode
	Body   []byte
}

// New returns a Response with the given status and body.
func New(code StatusCode, body []byte) Response {
	return Response{Status: code, Body: body}
}

// OK returns a 200 response carrying body.
func OK(body []byte) Response {
	return New(StatusOK, body)
}

// NotFound returns a 404 response. page may be nil.
func NotFound(page []byte) Response {
	return New(StatusNotFound, page)
}

// BadRequest returns a 400 response. page may be nil.
func BadRequest(page []byte) Response {
	return New(StatusBadRequest, page)
}
