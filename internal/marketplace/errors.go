package marketplace

import (
	"errors"
	"fmt"
)

var (
	// ErrNoToken means the caller never presented a bearer token; no
	// request is sent in that case.
	ErrNoToken = errors.New("marketplace: missing auth token")
	// ErrUnauthorized is the API rejecting the token (401).
	ErrUnauthorized = errors.New("marketplace: token rejected")
	// ErrUnavailable is the API telling us to come back later (503).
	ErrUnavailable = errors.New("marketplace: service unavailable")
)

// RemoteError carries the API's own message for every other failure,
// including 200s whose body reports success=false.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("marketplace: request failed (http=%d)", e.StatusCode)
	}
	return fmt.Sprintf("marketplace: %s (http=%d)", e.Message, e.StatusCode)
}
