package tmdb

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches a RemoteFetchError for a 404 response.
var ErrNotFound = errors.New("resource not found")

// RemoteFetchError is returned for any non-success TMDB response and for
// responses whose body cannot be parsed into the expected record.
type RemoteFetchError struct {
	Status  int    // HTTP status code of the response
	Message string // TMDB status_message, or a description of the failure
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("TMDB API error %d: %s", e.Status, e.Message)
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (e *RemoteFetchError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// IsClientError reports whether err is a RemoteFetchError with a 4xx status.
func IsClientError(err error) bool {
	var rfe *RemoteFetchError
	if !errors.As(err, &rfe) {
		return false
	}
	return rfe.Status >= 400 && rfe.Status < 500
}

// StatusOf returns the HTTP status carried by err, or 0 if it has none.
func StatusOf(err error) int {
	var rfe *RemoteFetchError
	if errors.As(err, &rfe) {
		return rfe.Status
	}
	return 0
}

// statusBody is the error payload TMDB sends with non-2xx responses.
type statusBody struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       *bool  `json:"success,omitempty"`
}
