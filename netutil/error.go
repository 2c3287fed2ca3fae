package netutil

import (
	"errors"
	"fmt"
)

// ErrTransientNetwork marks failures the caller may retry: timeouts, refused
// connections, 429 and 5xx responses.
var ErrTransientNetwork = errors.New("transient network failure")

type StatusError struct {
	Method string
	URL    string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status code %d", e.Method, e.URL, e.Code)
}
