package loader

import (
	"fmt"
	"net/http"
)

// HTTPError reports a directory API response with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

func newHTTPError(resp *http.Response) *HTTPError {
	text := http.StatusText(resp.StatusCode)
	if text == "" {
		text = resp.Status
	}
	return &HTTPError{StatusCode: resp.StatusCode, Status: text}
}

// MalformedResponseError reports a body that is not a directory document:
// a markup page, invalid JSON, or JSON without a listings array.
type MalformedResponseError struct {
	Reason string
	Cause  error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Cause)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

// NetworkError reports a request that never produced a response.
type NetworkError struct {
	URL   string
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }
