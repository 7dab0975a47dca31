package httpclient

import "fmt"

// HTTPError is a non-2xx upstream response. Body holds a truncated slice
// of the response for diagnostics.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

// Error returns the error message.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Body)
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, url, body string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		URL:        url,
		Body:       body,
	}
}
