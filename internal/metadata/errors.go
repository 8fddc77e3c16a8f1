package metadata

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable indicates the metadata provider is not configured.
	ErrProviderUnavailable = errors.New("movie metadata provider unavailable")
)

// UpstreamError describes a failed call to the metadata provider. The
// upstream status and message are retained for logging but are never exposed
// verbatim to API clients.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("metadata provider: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("metadata provider: status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("metadata provider: status %d", e.StatusCode)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
