package llmclient

import (
	"strings"
)

// Provider names accepted in configuration.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderFake   = "fake"
)

// Default models per provider.
var defaultModels = map[string]string{
	ProviderGemini: "gemini-2.5-flash",
	ProviderOpenAI: "gpt-4o",
	ProviderFake:   "fake",
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the OpenAI endpoint (OpenAI-compatible gateways).
	BaseURL string
	// JSONMode asks the provider for a JSON-only completion when supported.
	JSONMode bool
}

// NormalizeProvider lower-cases provider and falls back to gemini.
func NormalizeProvider(provider string) string {
	p := strings.ToLower(strings.TrimSpace(provider))
	if p == "" {
		return ProviderGemini
	}
	return p
}

// ModelOrDefault returns cfg.Model or the provider's default model.
func (cfg Config) ModelOrDefault() string {
	if m := strings.TrimSpace(cfg.Model); m != "" {
		return m
	}
	return defaultModels[NormalizeProvider(cfg.Provider)]
}
