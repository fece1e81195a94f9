package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrAPIKeyMissing is returned before any network call when no key is configured
	ErrAPIKeyMissing = errors.New("llm api key not configured")
	// ErrAPIKeyRestricted is returned for HTTP 403: the key is invalid or
	// restricted to other domains
	ErrAPIKeyRestricted = errors.New("llm api key rejected: check key and domain restrictions")
	// ErrEmptyResponse is returned when the provider answers without text
	ErrEmptyResponse = errors.New("llm returned no content")
)

// APIError is a non-2xx or provider-reported failure other than 403
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("llm api error: %s", e.Message)
	}
	return fmt.Sprintf("llm api error: %d - %s", e.StatusCode, e.Message)
}

// retryable reports whether a status is worth another attempt
func (e *APIError) retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

func restricted(detail string) error {
	if detail == "" {
		return ErrAPIKeyRestricted
	}
	return fmt.Errorf("%w: %s", ErrAPIKeyRestricted, detail)
}
