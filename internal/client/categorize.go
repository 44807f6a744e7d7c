package client

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

// Error category constants used as the upstreamErrorsTotal category label.
const (
	ErrorCategoryTimeout          ErrorCategory = "timeout"
	ErrorCategoryNetwork          ErrorCategory = "network"
	ErrorCategoryInvalidAPIKey    ErrorCategory = "invalid_api_key"
	ErrorCategoryLocationNotFound ErrorCategory = "location_not_found"
	ErrorCategoryRateLimited      ErrorCategory = "rate_limited"
	ErrorCategoryUpstream4xx      ErrorCategory = "upstream_4xx"
	ErrorCategoryUpstream5xx      ErrorCategory = "upstream_5xx"
	ErrorCategoryParsing          ErrorCategory = "parsing"
	ErrorCategoryUnknown          ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory for metrics.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorCategoryTimeout
	}

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		return ErrorCategoryUnknown
	}

	switch code := ue.StatusCode; {
	case code == 0:
		return ErrorCategoryNetwork
	case code == http.StatusNotFound:
		return ErrorCategoryLocationNotFound
	case code == http.StatusUnauthorized:
		return ErrorCategoryInvalidAPIKey
	case code == http.StatusTooManyRequests:
		return ErrorCategoryRateLimited
	case code >= 500:
		return ErrorCategoryUpstream5xx
	case code >= 400:
		return ErrorCategoryUpstream4xx
	default:
		// a 2xx that failed afterwards could only be read or decoded badly
		return ErrorCategoryParsing
	}
}
