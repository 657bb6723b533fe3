// Package provider implements the text-generation providers the relay can call.
// Each provider takes a prompt and returns the generated text, or a typed error
// describing why the upstream could not produce one.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider is a text-generation capability: prompt in, text out.
type Provider interface {
	// Name is the human-readable provider name used in error messages.
	Name() string

	// Generate sends prompt as a single user message and returns the content of
	// the first completion verbatim.
	Generate(ctx context.Context, prompt string) (string, error)
}

// DefaultTimeout bounds a single upstream call.
const DefaultTimeout = 5 * time.Minute

// Config selects and configures a provider.
type Config struct {
	// Name is the provider identifier: "openai" or "siliconflow".
	Name string

	// APIKey is the bearer credential. An empty key makes Generate fail
	// before any request is made.
	APIKey string

	// BaseURL overrides the provider's default API root (e.g. "https://api.openai.com/v1").
	BaseURL string

	// Model overrides the provider's default model.
	Model string

	// Temperature overrides the provider's default sampling temperature when non-nil.
	Temperature *float64

	// MaxTokens overrides the token ceiling (SiliconFlow only) when positive.
	MaxTokens int

	// Timeout bounds each upstream call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Names lists the providers New understands.
func Names() []string {
	return []string{OpenAIName, SiliconFlowName}
}

// EnvVar returns the environment variable holding the API key for the named provider.
func EnvVar(name string) string {
	switch strings.ToLower(name) {
	case OpenAIName:
		return OpenAIKeyEnv
	case SiliconFlowName:
		return SiliconFlowKeyEnv
	default:
		return ""
	}
}

// New builds the provider named by cfg.Name.
func New(cfg Config) (Provider, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	switch strings.ToLower(cfg.Name) {
	case OpenAIName:
		return NewOpenAI(cfg, client), nil
	case SiliconFlowName:
		return NewSiliconFlow(cfg, client), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want one of %s)", cfg.Name, strings.Join(Names(), ", "))
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
