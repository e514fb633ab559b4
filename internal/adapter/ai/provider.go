package ai

import (
	"context"

	"github.com/yourusername/mlearn/internal/domain"
)

// Provider defines the interface for AI providers (Cerebras, OpenAI, Claude, etc.)
type Provider interface {
	// GenerateMicroagent answers a question about a repository in the form of a microagent.
	GenerateMicroagent(ctx context.Context, request MicroagentRequest) (*MicroagentResponse, error)

	// GetName returns the provider name (e.g., "cerebras", "openai").
	GetName() string

	// ValidateKey checks if the API key is valid.
	ValidateKey(ctx context.Context) error
}

// MicroagentRequest contains everything the AI needs to write a microagent.
type MicroagentRequest struct {
	Repository *domain.Repository // Repository being learned
	Query      string             // The user's question, already trimmed
	Branch     string             // Target branch, empty when none was chosen
	RecentLog  []string           // Recent commit subjects on the branch
	APIKey     *domain.APIKey     // API key with tier information
}

// MicroagentResponse contains the generated microagent.
type MicroagentResponse struct {
	Microagent       *domain.Microagent
	TokensUsed       int    // Number of tokens consumed
	Model            string // Model used for generation
	ProcessingTimeMs int    // Processing time in milliseconds
}

// ProviderConfig contains configuration for creating a provider.
type ProviderConfig struct {
	APIKey     string
	BaseURL    string // Optional custom base URL
	Model      string // Model to use (optional, provider will choose default)
	Timeout    int    // Request timeout in seconds (default: 30)
	MaxRetries int    // Maximum number of retries (default: 3)
}

// Factory creates AI providers.
type Factory struct {
	providers map[string]func(*domain.APIKey, ProviderConfig) Provider
}

// NewFactory creates a new provider factory.
func NewFactory() *Factory {
	factory := &Factory{
		providers: make(map[string]func(*domain.APIKey, ProviderConfig) Provider),
	}

	// Register default providers
	factory.Register("cerebras", func(apiKey *domain.APIKey, config ProviderConfig) Provider {
		return NewCerebrasProvider(apiKey, config)
	})

	return factory
}

// Register registers a provider constructor.
func (f *Factory) Register(name string, constructor func(*domain.APIKey, ProviderConfig) Provider) {
	f.providers[name] = constructor
}

// Create creates a provider by name.
func (f *Factory) Create(name string, apiKey *domain.APIKey, config ProviderConfig) (Provider, error) {
	constructor, ok := f.providers[name]
	if !ok {
		return nil, &ProviderNotFoundError{ProviderName: name}
	}

	return constructor(apiKey, config), nil
}

// ProviderNotFoundError is returned when a provider is not found.
type ProviderNotFoundError struct {
	ProviderName string
}

func (e *ProviderNotFoundError) Error() string {
	return "provider not found: " + e.ProviderName
}
