package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the client-facing failure taxonomy.
type Kind int

const (
	KindInvalidRequest Kind = iota + 1
	KindMisconfigured
	KindNotFound
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindMisconfigured:
		return "misconfigured"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream_error"
	default:
		return "unknown"
	}
}

// Status is the HTTP status a Kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Client-facing messages. Provider error bodies are never forwarded.
const (
	MsgCityRequired        = "city parameter is required"
	MsgCityInvalid         = "city parameter is invalid"
	MsgCoordsRequired      = "latitude and longitude are required"
	MsgCoordsInvalid       = "latitude and longitude must be valid numbers"
	MsgCoordsOutOfRange    = "latitude must be within [-90, 90] and longitude within [-180, 180]"
	MsgAPIKeyMissing       = "weather API key not configured"
	MsgCityNotFound        = "city not found"
	MsgWeatherUnavailable  = "failed to retrieve weather data"
	MsgForecastUnavailable = "failed to retrieve forecast data"
)

// Error is returned by every gateway operation. Message is safe to show to
// clients; Err keeps the underlying cause for logs.
type Error struct {
	Op      string
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of a gateway error, or KindUpstream for anything else.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUpstream
}
