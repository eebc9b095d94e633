package zoho

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is the uniform error shape for any non-2xx resource response.
// Code and Message come from the provider's error envelope when one is
// present; Details keeps the raw body for callers that need provider
// specifics.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s api error %s (status %d): %s", e.Provider, e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// errorEnvelope covers both Zoho error shapes: CRM uses string codes
// ("INVALID_DATA"), Books uses numeric ones (1002). Code is kept raw and
// stringified.
type errorEnvelope struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
}

// newAPIError builds an APIError from a non-2xx response body, falling back
// to the raw body as the message when it is not a recognizable envelope.
func newAPIError(provider string, status int, body []byte) *APIError {
	apiErr := &APIError{
		Provider:   provider,
		StatusCode: status,
		Details:    json.RawMessage(body),
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		apiErr.Message = envelope.Message
		apiErr.Code = strings.Trim(string(envelope.Code), `"`)
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	return apiErr
}
