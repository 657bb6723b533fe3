// Package prompt builds the paraphrase instruction sent to the upstream model.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// DefaultCount is the number of rewordings requested when none is configured.
const DefaultCount = 20

// Mode controls whether the requested count is a floor or an exact number.
type Mode string

const (
	// AtLeast asks for the count or more rewordings.
	AtLeast Mode = "at-least"

	// Exactly asks for precisely the count of rewordings.
	Exactly Mode = "exactly"
)

// DefaultTemplate is the instruction used when no custom template is configured.
const DefaultTemplate = `Rewrite the following sentence in {{.Quantity}} different ways that keep the same meaning.
Make sure every rewording is a complete sentence and put each one on its own line.
Do not number the lines and do not add any headers or explanations.

Original sentence: "{{.Sentence}}"

Rewritten sentences:`

// ErrInvalidCount is returned for counts below one.
var ErrInvalidCount = errors.New("paraphrase count must be at least 1")

// Builder interpolates a sentence into the instruction template.
// A Builder is immutable after construction and safe for concurrent use.
type Builder struct {
	count int
	mode  Mode
	tmpl  *template.Template
}

// data is what templates can reference.
type data struct {
	Sentence string
	Count    int
	Quantity string
}

// ParseMode converts a configuration value into a Mode. Empty means AtLeast.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", AtLeast:
		return AtLeast, nil
	case Exactly:
		return Exactly, nil
	default:
		return "", fmt.Errorf("unknown count mode %q (want %q or %q)", s, AtLeast, Exactly)
	}
}

// NewBuilder creates a Builder. An empty tmpl selects DefaultTemplate.
func NewBuilder(count int, mode Mode, tmpl string) (*Builder, error) {
	if count < 1 {
		return nil, ErrInvalidCount
	}
	if mode == "" {
		mode = AtLeast
	}
	if mode != AtLeast && mode != Exactly {
		return nil, fmt.Errorf("unknown count mode %q", mode)
	}
	if tmpl == "" {
		tmpl = DefaultTemplate
	}

	t, err := template.New("paraphrase").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}

	return &Builder{count: count, mode: mode, tmpl: t}, nil
}

// Count returns the number of rewordings requested.
func (b *Builder) Count() int {
	return b.count
}

// Mode returns the count mode.
func (b *Builder) Mode() Mode {
	return b.mode
}

// Build renders the prompt for sentence. The sentence is inserted as-is.
func (b *Builder) Build(sentence string) (string, error) {
	var sb strings.Builder
	err := b.tmpl.Execute(&sb, data{
		Sentence: sentence,
		Count:    b.count,
		Quantity: b.quantity(),
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}

func (b *Builder) quantity() string {
	if b.mode == Exactly {
		return fmt.Sprintf("exactly %d", b.count)
	}
	return fmt.Sprintf("at least %d", b.count)
}
