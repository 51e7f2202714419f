package ai

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// BackendConfig is the immutable selection handed to NewBackend.
type BackendConfig struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	HTTPTimeout time.Duration
	MaxTokens   int
	Temperature float64
}

// backendFactory builds a Backend from a validated config.
type backendFactory func(BackendConfig) Backend

var registry = map[string]backendFactory{
	ProviderAnthropic: func(c BackendConfig) Backend {
		return NewAnthropicClient(c.APIKey, c.BaseURL, c.HTTPTimeout)
	},
	ProviderOpenAI: func(c BackendConfig) Backend {
		return NewOpenAIClient(c.APIKey, c.BaseURL, c.HTTPTimeout)
	},
}

// Providers lists the supported provider identifiers.
func Providers() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NormalizeProvider lowercases and trims a provider identifier.
func NormalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewBackend selects the backend named by cfg.Provider. It fails fast with a
// ConfigurationError when the provider is unknown or its credential is absent.
func NewBackend(cfg BackendConfig) (Backend, error) {
	name := NormalizeProvider(cfg.Provider)
	f, ok := registry[name]
	if !ok {
		return nil, &ConfigurationError{
			Field:  "ai_provider",
			Reason: "unsupported provider " + strconv.Quote(cfg.Provider) + " (use " + strings.Join(Providers(), " or ") + ")",
		}
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ConfigurationError{Field: name + "_api_key", Reason: "credential is not set"}
	}
	cfg.Provider = name
	return f(cfg), nil
}
