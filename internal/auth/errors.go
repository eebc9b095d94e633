package auth

import (
	"errors"
	"fmt"
)

// ErrAuthRequired signals that no refresh token is available: the one-time
// grant flow has never been completed (or its stored result was lost). This
// is a terminal precondition failure for every API call, not a retryable
// error.
var ErrAuthRequired = errors.New("authorization required: run the authorize flow to obtain a refresh token")

// RefreshError reports a failed refresh-token exchange. StatusCode and Code
// carry the upstream response when the token endpoint answered with a
// non-2xx; a pure transport failure leaves them zero and wraps the cause.
type RefreshError struct {
	StatusCode int
	Code       string // provider error code, e.g. "invalid_code" or "invalid_client"
	Message    string
	Err        error
}

func (e *RefreshError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Code != "":
		return fmt.Sprintf("token refresh rejected: %s (status %d): %s", e.Code, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("token refresh failed with status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("token refresh failed: %v", e.Err)
	}
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}
