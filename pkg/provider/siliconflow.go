package provider

import (
	"context"
	"net/http"

	"github.com/papercomputeco/rephrase/pkg/llm"
)

const (
	SiliconFlowName           = "siliconflow"
	SiliconFlowKeyEnv         = "SILICONFLOW_API_KEY"
	SiliconFlowDefaultBaseURL = "https://api.siliconflow.cn/v1"
	SiliconFlowDefaultModel   = "deepseek-ai/DeepSeek-R1-0528-Qwen3-8B"

	siliconFlowDefaultTemperature = 0.8
	siliconFlowDefaultMaxTokens   = 1024
)

// SiliconFlow calls SiliconFlow's OpenAI-compatible API with a token ceiling
// and streaming disabled. The completion count is left to the provider default.
type SiliconFlow struct {
	completer
	model       string
	temperature float64
	maxTokens   int
}

// NewSiliconFlow creates a SiliconFlow provider from cfg using client for transport.
func NewSiliconFlow(cfg Config, client *http.Client) *SiliconFlow {
	temperature := siliconFlowDefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	maxTokens := siliconFlowDefaultMaxTokens
	if cfg.MaxTokens > 0 {
		maxTokens = cfg.MaxTokens
	}

	return &SiliconFlow{
		completer: completer{
			name:       "SiliconFlow",
			baseURL:    orDefault(cfg.BaseURL, SiliconFlowDefaultBaseURL),
			apiKey:     cfg.APIKey,
			envVar:     SiliconFlowKeyEnv,
			httpClient: client,
		},
		model:       orDefault(cfg.Model, SiliconFlowDefaultModel),
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (s *SiliconFlow) Name() string {
	return s.name
}

func (s *SiliconFlow) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	return s.complete(ctx, &llm.ChatRequest{
		Model:       s.model,
		Messages:    []llm.Message{llm.UserMessage(prompt)},
		Temperature: &s.temperature,
		MaxTokens:   &s.maxTokens,
		Stream:      &stream,
	})
}
