package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// Fetch errors.
var (
	// ErrInvalidProxyAddress is returned when the proxy address format is
	// invalid. Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrProxyUnavailable is returned when the configured proxy does not
	// answer a SOCKS5 handshake.
	ErrProxyUnavailable = errors.New("SOCKS5 proxy is not available")

	// ErrNotHTML is returned when a page response is not an HTML document.
	ErrNotHTML = errors.New("response is not an HTML document")
)

// StatusError reports a non-success HTTP response.
type StatusError struct {
	// URL is the requested URL.
	URL string
	// StatusCode is the HTTP status code of the response.
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsNotFound reports whether err is a StatusError for a page that does not
// exist (404 Not Found or 410 Gone).
func IsNotFound(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusGone
}
