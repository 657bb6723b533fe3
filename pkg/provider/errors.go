package provider

import (
	"encoding/json"
	"fmt"
)

// MissingCredentialError is returned when the provider has no API key configured.
type MissingCredentialError struct {
	Provider string
	EnvVar   string
}

func (e *MissingCredentialError) Error() string {
	if e.EnvVar == "" {
		return e.Provider + ": missing API key"
	}
	return e.Provider + ": missing API key (" + e.EnvVar + ")"
}

// UpstreamError describes any failure talking to the provider: transport errors,
// non-2xx statuses and malformed response envelopes.
type UpstreamError struct {
	Provider string

	// StatusCode is the upstream HTTP status, or 0 if no response was received.
	StatusCode int

	// Details is the upstream's own error body. It is valid JSON when non-nil:
	// non-JSON bodies are carried as a JSON string.
	Details json.RawMessage

	Err error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("%s: upstream returned %d: %v", e.Provider, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s: upstream returned %d", e.Provider, e.StatusCode)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// rawDetails converts an upstream body into something safe to embed in a JSON response.
func rawDetails(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}

	quoted, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return json.RawMessage(quoted)
}
