package osf

import (
	"errors"
	"fmt"
	"net/http"
)

// DownloadError reports an HTTP error status while fetching a remote
// file. Callers should prefer the predicate functions to inspect errors
// rather than asserting on this type directly.
type DownloadError struct {
	name       string
	url        string
	statusCode int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %s: HTTP %d", e.name, e.url, e.statusCode)
}

func newDownloadError(name, url string, statusCode int) *DownloadError {
	return &DownloadError{name: name, url: url, statusCode: statusCode}
}

// StatusCode returns the HTTP status code from the response.
func (e *DownloadError) StatusCode() int { return e.statusCode }

// Name returns the human-readable name of the file that failed.
func (e *DownloadError) Name() string { return e.name }

// IsNotFound reports whether err is a download error with HTTP 404 status.
func IsNotFound(err error) bool { return HasStatusCode(err, http.StatusNotFound) }

// HasStatusCode reports whether err is a download error whose HTTP status matches.
func HasStatusCode(err error, code int) bool {
	var dlErr *DownloadError
	return errors.As(err, &dlErr) && dlErr.statusCode == code
}
