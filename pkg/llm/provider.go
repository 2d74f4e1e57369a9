package llm

import "context"

// Message represents a chat message in a provider-agnostic format.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Model is one selectable model offered by a provider.
type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CompletionRequest carries everything a provider needs for one answer.
// Model and APIKey are chosen per request, not fixed at construction.
type CompletionRequest struct {
	System    string
	Prompt    string
	History   []Message
	Model     string
	APIKey    string
	MaxTokens int
}

// Provider is the capability set the pipeline requires of any LLM backend.
// Implementations are interchangeable and selected by name per chat request.
type Provider interface {
	// Name identifies the provider ("groq", "huggingface").
	Name() string

	// DefaultModel is used when the request does not pick a model.
	DefaultModel() string

	// ListModels fetches the models available to the given key. An invalid
	// key fails with an auth ProviderError; no models is an empty list, not
	// an error.
	ListModels(ctx context.Context, apiKey string) ([]Model, error)

	// Complete generates an answer. Failures are typed ProviderErrors so
	// callers can distinguish transient, auth and rate-limit causes.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
