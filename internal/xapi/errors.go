package xapi

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the handle resolved to no account.
	ErrNotFound = errors.New("xapi: account not found")
	// ErrRateLimited means the source signalled request-budget exhaustion.
	ErrRateLimited = errors.New("xapi: rate limited")
	// ErrUnauthorized means the configured credentials were rejected.
	ErrUnauthorized = errors.New("xapi: unauthorized")
)

// NetworkError wraps a transport-level failure so callers can distinguish
// transient network trouble from API-level rejections.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("xapi: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
