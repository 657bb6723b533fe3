package llm

// ChatRequest represents a chat-completion request (OpenAI-compatible).
// Optional fields are pointers so each provider only sends what it sets.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	N           *int      `json:"n,omitempty"`          // Number of completions
	MaxTokens   *int      `json:"max_tokens,omitempty"` // Token ceiling for the completion
	Stream      *bool     `json:"stream,omitempty"`
}

// ParaphraseRequest is the body accepted by POST /api/paraphrase.
type ParaphraseRequest struct {
	Sentence string `json:"sentence"`
}
