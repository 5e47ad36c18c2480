package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/config"
)

func TestParseProviderKind(t *testing.T) {
	kind, err := ParseProviderKind("ollama")
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, kind)

	kind, err = ParseProviderKind("openai")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, kind)

	_, err = ParseProviderKind("anthropic")
	assert.Error(t, err)
}

func TestNewGeneratorOllama(t *testing.T) {
	gen, err := NewGenerator(config.LLMConfig{Provider: "ollama", Model: "mistral"})
	require.NoError(t, err)
	assert.Equal(t, "Ollama", gen.ProviderName())
	assert.Equal(t, "mistral", gen.ModelName())
}

func TestNewGeneratorUnknownProvider(t *testing.T) {
	_, err := NewGenerator(config.LLMConfig{Provider: "duck-typed"})
	assert.Error(t, err)
}
