package port

import "context"

// Generator is a language model capable of turning a prompt into text.
// Adding a provider means adding an adapter behind this interface, not
// branching on provider strings at call sites.
type Generator interface {
	// Generate produces text for the prompt. It honors context
	// cancellation and deadlines; the caller owns timeout policy.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the underlying model.
	ModelName() string

	// ProviderName returns the name of the provider ("Ollama", "OpenAI").
	ProviderName() string
}
