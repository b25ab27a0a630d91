// Package apierr defines the error taxonomy for external provider calls.
// Callers classify failures with errors.Is against these sentinels.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound means the provider has no data for the request.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited means the provider rejected the call for rate reasons.
	ErrRateLimited = errors.New("rate limited")
	// ErrTransient covers network errors and 5xx responses worth retrying.
	ErrTransient = errors.New("transient provider error")
	// ErrMalformed means the provider responded with an unparseable body.
	ErrMalformed = errors.New("malformed provider response")
)

// FromStatus maps an HTTP status code to the taxonomy.
// 2xx codes map to nil.
func FromStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", ErrNotFound, code)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, code)
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrTransient, code)
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrTransient, code)
	}
}
