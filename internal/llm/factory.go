package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/NomadCrew/nomad-feedback-backend/config"
)

const (
	ProviderGemini = config.ChatProviderGemini
	ProviderOpenAI = config.ChatProviderOpenAI
)

// Factory creates LLM clients from the chat configuration.
type Factory struct {
	Provider      string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

func NewFactory(cfg *config.ChatConfig) *Factory {
	return &Factory{
		Provider:      cfg.Provider,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		GeminiBaseURL: cfg.GeminiBaseURL,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIModel:   cfg.OpenAIModel,
	}
}

// CreateClient builds the client for the configured provider. A provider
// without a key yields a client whose calls fail with ErrNotConfigured, so
// the server can start and answer /chat with an error.
func (f *Factory) CreateClient(ctx context.Context) (Client, error) {
	switch strings.ToLower(f.Provider) {
	case ProviderGemini:
		if f.GeminiAPIKey == "" {
			return unconfigured{provider: ProviderGemini}, nil
		}
		return NewGemini(ctx, f.GeminiAPIKey, f.GeminiModel, f.GeminiBaseURL)
	case ProviderOpenAI:
		if f.OpenAIAPIKey == "" {
			return unconfigured{provider: ProviderOpenAI}, nil
		}
		return NewOpenAI(f.OpenAIAPIKey, f.OpenAIBaseURL, f.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", f.Provider)
	}
}

// IsConfigured reports whether c can reach a provider at all.
func IsConfigured(c Client) bool {
	_, missing := c.(unconfigured)
	return c != nil && !missing
}

type unconfigured struct {
	provider string
}

func (u unconfigured) Generate(context.Context, []Message) (Response, error) {
	return Response{}, fmt.Errorf("%w: %s: %w", ErrProvider, u.provider, ErrNotConfigured)
}
