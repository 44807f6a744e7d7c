package client

import (
	"errors"
	"fmt"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrUpstreamFailure  = errors.New("upstream failure")
	ErrInvalidAPIKey    = errors.New("invalid API key")
)

// FailureReason tags why an upstream call failed. It is decided once, where
// the provider response is first inspected.
type FailureReason int

const (
	ReasonOther FailureReason = iota
	ReasonNotFound
)

func (r FailureReason) String() string {
	switch r {
	case ReasonNotFound:
		return "not-found"
	default:
		return "other"
	}
}

// UpstreamError is returned for every failed provider call.
// StatusCode is 0 when no HTTP response was received.
type UpstreamError struct {
	Endpoint   string
	Reason     FailureReason
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %v", e.Endpoint, e.Reason, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Reason, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is matches ErrUpstreamFailure for any upstream error and ErrLocationNotFound
// only for the not-found reason.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUpstreamFailure:
		return true
	case ErrLocationNotFound:
		return e.Reason == ReasonNotFound
	}
	return false
}

// ReasonOf extracts the failure reason from err. ok is false when err did not
// come from an upstream call.
func ReasonOf(err error) (reason FailureReason, ok bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Reason, true
	}
	return ReasonOther, false
}
