// Package paraphrase implements the relay's single operation: validate a
// sentence, build the instruction prompt and ask the configured provider for
// rewordings. The provider's text is returned untouched.
package paraphrase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/rephrase/pkg/prompt"
	"github.com/papercomputeco/rephrase/pkg/provider"
)

// ErrSentenceRequired is returned for an empty sentence.
var ErrSentenceRequired = errors.New("sentence is required")

// Paraphraser produces rewordings of a sentence.
type Paraphraser interface {
	Paraphrase(ctx context.Context, sentence string) (string, error)

	// ProviderName names the upstream provider, for error messages and health output.
	ProviderName() string
}

// Service is the Paraphraser backed by a single provider.
type Service struct {
	provider provider.Provider
	prompts  *prompt.Builder
	logger   *zap.Logger
}

// NewService creates a Service.
func NewService(p provider.Provider, prompts *prompt.Builder, logger *zap.Logger) *Service {
	return &Service{
		provider: p,
		prompts:  prompts,
		logger:   logger,
	}
}

// ProviderName implements Paraphraser.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Paraphrase implements Paraphraser. The returned text is exactly what the
// provider generated: no line splitting, numbering removal or deduplication.
func (s *Service) Paraphrase(ctx context.Context, sentence string) (string, error) {
	if sentence == "" {
		return "", ErrSentenceRequired
	}

	p, err := s.prompts.Build(sentence)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	startTime := time.Now()
	s.logger.Debug("calling upstream provider",
		zap.String("provider", s.provider.Name()),
		zap.Int("count", s.prompts.Count()),
		zap.String("mode", string(s.prompts.Mode())),
		zap.Int("prompt_size", len(p)),
	)

	text, err := s.provider.Generate(ctx, p)
	if err != nil {
		return "", err
	}

	s.logger.Debug("received paraphrases from upstream",
		zap.String("provider", s.provider.Name()),
		zap.Int("size", len(text)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return text, nil
}
