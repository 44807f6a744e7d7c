package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

// TestCategorizeError verifies that CategorizeError maps errors to the correct ErrorCategory
// for metrics labeling, including wrapped upstream errors and transport timeouts.
func TestCategorizeError(t *testing.T) {
	upstream := func(status int, err error) error {
		return &UpstreamError{Endpoint: "weather", StatusCode: status, Err: err}
	}
	// name: test case description; err: input error; want: expected ErrorCategory.
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"timeout context", context.DeadlineExceeded, ErrorCategoryTimeout},
		{"canceled context", context.Canceled, ErrorCategoryTimeout},
		{"wrapped deadline", upstream(0, fmt.Errorf("request timeout: %w", context.DeadlineExceeded)), ErrorCategoryTimeout},
		{"net timeout", upstream(0, timeoutErr{}), ErrorCategoryTimeout},
		{"connection refused", upstream(0, errors.New("dial tcp: connection refused")), ErrorCategoryNetwork},
		{"not found", upstream(404, ErrLocationNotFound), ErrorCategoryLocationNotFound},
		{"invalid key", upstream(401, ErrInvalidAPIKey), ErrorCategoryInvalidAPIKey},
		{"rate limited", upstream(429, errors.New("too many")), ErrorCategoryRateLimited},
		{"bad request", upstream(400, errors.New("bad")), ErrorCategoryUpstream4xx},
		{"server error", upstream(502, errors.New("bad gateway")), ErrorCategoryUpstream5xx},
		{"parse", upstream(200, errors.New("parse response: unexpected EOF")), ErrorCategoryParsing},
		{"wrapped upstream", fmt.Errorf("gateway: %w", upstream(500, errors.New("boom"))), ErrorCategoryUpstream5xx},
		{"unknown", errors.New("something else"), ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategorizeError(tt.err)
			if got != tt.want {
				t.Errorf("CategorizeError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpstreamError_Is(t *testing.T) {
	notFound := &UpstreamError{Endpoint: "weather", Reason: ReasonNotFound, StatusCode: 404, Err: ErrLocationNotFound}
	other := &UpstreamError{Endpoint: "weather", Reason: ReasonOther, StatusCode: 500, Err: errors.New("boom")}

	if !errors.Is(notFound, ErrLocationNotFound) || !errors.Is(notFound, ErrUpstreamFailure) {
		t.Error("not-found error should match ErrLocationNotFound and ErrUpstreamFailure")
	}
	if errors.Is(other, ErrLocationNotFound) {
		t.Error("other error should not match ErrLocationNotFound")
	}
	if !errors.Is(fmt.Errorf("wrap: %w", other), ErrUpstreamFailure) {
		t.Error("wrapped error should match ErrUpstreamFailure")
	}

	if r, ok := ReasonOf(fmt.Errorf("wrap: %w", notFound)); !ok || r != ReasonNotFound {
		t.Errorf("ReasonOf() = %v, %v; want not-found, true", r, ok)
	}
	if _, ok := ReasonOf(errors.New("plain")); ok {
		t.Error("ReasonOf(plain) ok = true, want false")
	}
	if ReasonNotFound.String() != "not-found" || ReasonOther.String() != "other" {
		t.Error("FailureReason.String() mismatch")
	}
}
