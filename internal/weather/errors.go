package weather

import (
	"context"
	"errors"
)

var (
	// ErrNetworkFailure is returned when the outbound call fails or times out.
	ErrNetworkFailure = errors.New("network failure")
	// ErrMalformedResponse is returned when expected fields are absent or the
	// variable arrays disagree in length.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrInvalidTimeRange is returned when the time axis cannot describe a
	// non-empty, evenly spaced series.
	ErrInvalidTimeRange = errors.New("invalid time range")
)

// Error kinds reported in API bodies and metric labels.
const (
	KindNetworkFailure    = "network_failure"
	KindMalformedResponse = "malformed_response"
	KindInvalidTimeRange  = "invalid_time_range"
	KindCanceled          = "canceled"
	KindUnknown           = "unknown"
)

// ErrorKind classifies err into one of the Kind constants. A nil error has no kind.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, ErrInvalidTimeRange):
		return KindInvalidTimeRange
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, ErrNetworkFailure), errors.Is(err, context.DeadlineExceeded):
		return KindNetworkFailure
	default:
		return KindUnknown
	}
}
