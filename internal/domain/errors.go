package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNoData       = errors.New("no data")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadAddress   = errors.New("invalid address")
	ErrContextDone  = errors.New("context cancelled")
	ErrLockHeld     = errors.New("lock already held")
)

// ErrorKind classifies an upstream failure.
type ErrorKind string

const (
	// KindUpstream covers explicit error envelopes and non-2xx responses.
	KindUpstream ErrorKind = "upstream"
	// KindParse covers bodies that are not valid JSON even after the
	// decompression fallback.
	KindParse ErrorKind = "parse"
	// KindNetwork covers transport-level failures.
	KindNetwork ErrorKind = "network"
)

// UpstreamError is the uniform error shape for failures at the GMGN API
// boundary. HTTPStatus is zero when no response was received; Preview holds
// a truncated body excerpt for parse failures.
type UpstreamError struct {
	Kind       ErrorKind
	Message    string
	HTTPStatus int
	Preview    string
}

func (e *UpstreamError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s error (HTTP %d): %s", e.Kind, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Is maps well-known HTTP statuses onto the domain sentinel errors so callers
// can use errors.Is without inspecting status codes.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.HTTPStatus == 401 || e.HTTPStatus == 403 ||
			(e.HTTPStatus >= 300 && e.HTTPStatus < 400)
	case ErrRateLimited:
		return e.HTTPStatus == 429
	case ErrNotFound:
		return e.HTTPStatus == 404
	}
	return false
}
