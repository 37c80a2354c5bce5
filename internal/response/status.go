package response

import "fmt"

// StatusText returns the text description for a status code
func StatusText(code StatusCode) string {
	if text, ok := statusText[code]; ok {
		return text
	}
	return "Unknown Status"
}

// StatusLine renders "HTTP/1.1 <code> <reason>" without a line break.
func StatusLine(code StatusCode) string {
	return fmt.Sprintf("HTTP/1.1 %d %s", code, StatusText(code))
}

// IsClientError returns true for 4xx status codes
func (code StatusCode) IsClientError() bool {
	return code >= 400 && code < 500
}

// IsServerError returns true for 5xx status codes
func (code StatusCode) IsServerError() bool {
	return code >= 500 && code < 600
}

// IsError returns true for 4xx or 5xx status codes
func (code StatusCode) IsError() bool {
	return code.IsClientError() || code.IsServerError()
}
