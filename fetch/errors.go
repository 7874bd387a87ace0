package fetch

import (
	"fmt"
	"io/fs"
	"net/http"
)

// ErrNotFound reports a template file or location that does
// not exist. It matches fs.ErrNotExist.
var ErrNotFound = fmt.Errorf("template not found: %w", fs.ErrNotExist)

// StatusError reports a non-success response from a remote
// template source.
type StatusError struct {
	// URL is the requested resource.
	URL string
	// Code is the HTTP status code.
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf(
		"unexpected status %d %s for %s",
		e.Code, http.StatusText(e.Code), e.URL,
	)
}

// StatusCode returns the HTTP status code.
func (e *StatusError) StatusCode() int {
	return e.Code
}

// CheckStatus maps an HTTP status code onto nil, ErrNotFound
// or a *StatusError.
func CheckStatus(url string, code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%s: %w", url, ErrNotFound)
	default:
		return &StatusError{URL: url, Code: code}
	}
}
