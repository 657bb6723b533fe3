// Package llm provides the wire representations exchanged with OpenAI-compatible
// chat-completion APIs and with callers of the paraphrase relay.
package llm

import "encoding/json"

// ErrorResponse is the JSON body the relay returns on any failure.
type ErrorResponse struct {
	Error string `json:"error"`

	// Details carries the upstream provider's own error payload, verbatim.
	Details json.RawMessage `json:"details,omitempty"`
}

// APIError is the error envelope OpenAI-compatible providers return on non-2xx.
type APIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type,omitempty"`
		Code    any    `json:"code,omitempty"`
	} `json:"error"`
}
