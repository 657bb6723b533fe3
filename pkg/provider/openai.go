package provider

import (
	"context"
	"net/http"

	"github.com/papercomputeco/rephrase/pkg/llm"
)

const (
	OpenAIName           = "openai"
	OpenAIKeyEnv         = "OPENAI_API_KEY"
	OpenAIDefaultBaseURL = "https://api.openai.com/v1"
	OpenAIDefaultModel   = "gpt-3.5-turbo"

	openAIDefaultTemperature = 0.7
)

// OpenAI calls the OpenAI chat-completions API, requesting a single completion.
type OpenAI struct {
	completer
	model       string
	temperature float64
}

// NewOpenAI creates an OpenAI provider from cfg using client for transport.
func NewOpenAI(cfg Config, client *http.Client) *OpenAI {
	temperature := openAIDefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	return &OpenAI{
		completer: completer{
			name:       "OpenAI",
			baseURL:    orDefault(cfg.BaseURL, OpenAIDefaultBaseURL),
			apiKey:     cfg.APIKey,
			envVar:     OpenAIKeyEnv,
			httpClient: client,
		},
		model:       orDefault(cfg.Model, OpenAIDefaultModel),
		temperature: temperature,
	}
}

func (o *OpenAI) Name() string {
	return o.name
}

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	n := 1
	return o.complete(ctx, &llm.ChatRequest{
		Model:       o.model,
		Messages:    []llm.Message{llm.UserMessage(prompt)},
		Temperature: &o.temperature,
		N:           &n,
	})
}
