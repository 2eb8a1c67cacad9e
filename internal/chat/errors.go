package chat

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/suPer8Hu/pawtrip/internal/ai"
)

// ValidationError reports a request that is missing required fields.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamError wraps a language model failure.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// HTTPStatus is always a 5xx: provider 5xx codes pass through, a
// provider 429 becomes 503 and anything else 502.
func (e *UpstreamError) HTTPStatus() int {
	var se *ai.StatusError
	if !errors.As(e.Err, &se) {
		return http.StatusBadGateway
	}
	switch {
	case se.StatusCode >= 500 && se.StatusCode <= 599:
		return se.StatusCode
	case se.StatusCode == http.StatusTooManyRequests:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

var ErrTripNotFound = errors.New("trip not found")

// ErrEnrichmentUnavailable marks a trip enrichment that may succeed later.
var ErrEnrichmentUnavailable = errors.New("trip enrichment unavailable")
