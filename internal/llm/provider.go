// Package llm holds the model backends the pipeline generates with. A
// provider is a named pipeline.Generator; selection happens once at
// startup from flags and environment.
package llm

import (
	"fmt"
	"os"
	"strings"

	"deepread/internal/pipeline"
)

// Provider is a named generation backend.
type Provider interface {
	Name() string
	pipeline.Generator
}

// New returns the provider for the given name. An empty name consults
// DEEPREAD_PROVIDER, then falls back to openai when an API key is
// present and mock otherwise.
func New(name string) (Provider, error) {
	if name == "" {
		name = strings.TrimSpace(os.Getenv("DEEPREAD_PROVIDER"))
	}
	switch name {
	case "openai":
		return NewOpenAIFromEnv()
	case "mock":
		return NewMock(), nil
	case "":
		if strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) != "" {
			return NewOpenAIFromEnv()
		}
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q (known: openai, mock)", name)
	}
}
