// Package config loads the immutable relay configuration: built-in defaults,
// then an optional TOML file, then environment variables. Command-line flags
// are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/rephrase/pkg/prompt"
	"github.com/papercomputeco/rephrase/pkg/provider"
)

const (
	// DefaultListenAddr is the relay's listen address when none is configured.
	DefaultListenAddr = ":3001"

	// DefaultProvider is the provider used when none is configured.
	DefaultProvider = provider.OpenAIName
)

// Environment variables consulted by Load, besides the provider key variables.
const (
	EnvProvider = "REPHRASE_PROVIDER"
	EnvListen   = "REPHRASE_LISTEN"
	EnvModel    = "REPHRASE_MODEL"
	EnvBaseURL  = "REPHRASE_BASE_URL"
)

// Config is the complete relay configuration.
type Config struct {
	// ListenAddr is the address the relay listens on (e.g. ":3001").
	ListenAddr string `toml:"listen"`

	// AllowOrigins is the CORS allow-list; "*" permits any browser origin.
	AllowOrigins []string `toml:"allow_origins"`

	Debug bool `toml:"debug"`

	Provider ProviderConfig `toml:"provider"`
	Prompt   PromptConfig   `toml:"prompt"`
}

// ProviderConfig configures the single upstream provider.
type ProviderConfig struct {
	Name        string   `toml:"name"`
	APIKey      string   `toml:"api_key"`
	BaseURL     string   `toml:"base_url"`
	Model       string   `toml:"model"`
	Temperature *float64 `toml:"temperature"`
	MaxTokens   int      `toml:"max_tokens"`
	Timeout     Duration `toml:"timeout"`
}

// PromptConfig configures how many rewordings are requested and how.
type PromptConfig struct {
	// Count is the desired number of rewordings.
	Count int `toml:"count"`

	// Mode is "at-least" or "exactly". Empty picks the provider's default.
	Mode string `toml:"mode"`

	// Template optionally replaces the built-in instruction (Go text/template).
	Template string `toml:"template"`
}

// Duration decodes TOML strings such as "90s" into a time.Duration.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ListenAddr:   DefaultListenAddr,
		AllowOrigins: []string{"*"},
		Provider: ProviderConfig{
			Name:    DefaultProvider,
			Timeout: Duration{provider.DefaultTimeout},
		},
		Prompt: PromptConfig{
			Count: prompt.DefaultCount,
		},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when path
// is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("could not decode config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return Config{}, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
		}
	}

	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

// SetProvider switches to the named provider. A key configured for a
// different provider is dropped and the new provider's key variable is read,
// so one provider's secret is never sent to another.
func (c *Config) SetProvider(name string) {
	c.setProvider(name, os.LookupEnv)
}

func (c *Config) setProvider(name string, lookup func(string) (string, bool)) {
	if !strings.EqualFold(c.Provider.Name, name) {
		c.Provider.APIKey = ""
	}
	c.Provider.Name = name
	c.applyKeyEnv(lookup)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvProvider); ok && v != "" {
		c.setProvider(v, lookup)
	}
	if v, ok := lookup(EnvListen); ok && v != "" {
		c.ListenAddr = v
	}
	if v, ok := lookup(EnvModel); ok && v != "" {
		c.Provider.Model = v
	}
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.Provider.BaseURL = v
	}

	// The key variable depends on the final provider choice.
	c.applyKeyEnv(lookup)
}

func (c *Config) applyKeyEnv(lookup func(string) (string, bool)) {
	if env := provider.EnvVar(c.Provider.Name); env != "" {
		if v, ok := lookup(env); ok && v != "" {
			c.Provider.APIKey = v
		}
	}
}

// ErrNoListenAddr is returned by Validate for an empty listen address.
var ErrNoListenAddr = errors.New("listen address is required")

// Validate checks the configuration for errors that would prevent startup.
// A missing API key is not one of them: the relay reports it per request.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return ErrNoListenAddr
	}
	if provider.EnvVar(c.Provider.Name) == "" {
		return fmt.Errorf("unknown provider %q (want one of %s)", c.Provider.Name, strings.Join(provider.Names(), ", "))
	}
	if c.Prompt.Count < 1 {
		return prompt.ErrInvalidCount
	}
	if _, err := prompt.ParseMode(c.Prompt.Mode); err != nil {
		return err
	}
	return nil
}

// PromptMode resolves the count mode: an explicit setting wins, otherwise
// OpenAI asks for "at least" and SiliconFlow for "exactly".
func (c Config) PromptMode() (prompt.Mode, error) {
	if c.Prompt.Mode != "" {
		return prompt.ParseMode(c.Prompt.Mode)
	}
	if strings.EqualFold(c.Provider.Name, provider.SiliconFlowName) {
		return prompt.Exactly, nil
	}
	return prompt.AtLeast, nil
}

// ProviderOptions converts the provider section into a provider.Config.
func (c Config) ProviderOptions() provider.Config {
	return provider.Config{
		Name:        c.Provider.Name,
		APIKey:      c.Provider.APIKey,
		BaseURL:     c.Provider.BaseURL,
		Model:       c.Provider.Model,
		Temperature: c.Provider.Temperature,
		MaxTokens:   c.Provider.MaxTokens,
		Timeout:     c.Provider.Timeout.Duration,
	}
}
