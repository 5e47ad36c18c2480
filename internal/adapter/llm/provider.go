package llm

import (
	"fmt"

	"docqa/config"
	"docqa/internal/port"
)

// ProviderKind is the closed set of supported generation backends.
type ProviderKind int

const (
	ProviderOllama ProviderKind = iota
	ProviderOpenAI
)

// ParseProviderKind maps a configuration string to a ProviderKind.
func ParseProviderKind(s string) (ProviderKind, error) {
	switch s {
	case "ollama":
		return ProviderOllama, nil
	case "openai":
		return ProviderOpenAI, nil
	default:
		return 0, fmt.Errorf("unsupported LLM provider: %q", s)
	}
}

func (k ProviderKind) String() string {
	switch k {
	case ProviderOllama:
		return "ollama"
	case ProviderOpenAI:
		return "openai"
	default:
		return "unknown"
	}
}

// NewGenerator builds the configured provider's generator. Adding a
// provider means adding a case here and an adapter file, nothing else.
func NewGenerator(cfg config.LLMConfig) (port.Generator, error) {
	kind, err := ParseProviderKind(cfg.Provider)
	if err != nil {
		return nil, err
	}

	switch kind {
	case ProviderOllama:
		return NewOllama(cfg.BaseURL, cfg.Model), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg.APIKeyEnv, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}
