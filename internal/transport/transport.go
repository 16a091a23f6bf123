// Package transport issues plain GET requests and hands back status, headers
// and body without interpreting them.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrNotFound is matched by errors that mean the remote resource is gone.
var ErrNotFound = errors.New("resource not found")

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r *Response) Success() bool {
	return r.Status >= 200 && r.Status < 300
}

func (r *Response) NotModified() bool {
	return r.Status == http.StatusNotModified
}

// Err converts an unsuccessful status into a *StatusError.
func (r *Response) Err(rawURL string) error {
	if r.Success() {
		return nil
	}
	return &StatusError{Code: r.Status, URL: rawURL}
}

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && (e.Code == http.StatusNotFound || e.Code == http.StatusGone)
}

// Client performs GET requests.
type Client interface {
	Get(ctx context.Context, rawURL string, header http.Header, query url.Values) (*Response, error)
}
