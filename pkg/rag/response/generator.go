package response

import (
	"context"
	"fmt"
	"time"

	"doc-assistant-be/internal/pkg/logger"
	"doc-assistant-be/pkg/llm"
	"doc-assistant-be/pkg/llm/factory"
	"doc-assistant-be/pkg/rag/prompt"
	"doc-assistant-be/pkg/store"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 60 * time.Second

// Request is everything needed to answer one question.
type Request struct {
	Question string
	Chunks   []store.RetrievedChunk
	History  []store.ChatMessage

	// HistoryWindow caps how many history turns reach the prompt;
	// zero means the builder default.
	HistoryWindow int

	// Per-request provider selection. APIKey may be empty, in which case the
	// server-side key for the provider is used when configured.
	Provider string
	Model    string
	APIKey   string
}

// Generator builds a grounded prompt and delegates to the selected provider.
// It always returns a usable answer string: provider failures degrade to a
// user-safe fallback and the typed cause comes back alongside it for logging.
type Generator struct {
	registry     *factory.Registry
	logger       logger.ILogger
	timeout      time.Duration
	fallbackKeys map[string]string
}

func NewGenerator(registry *factory.Registry, fallbackKeys map[string]string, timeout time.Duration, log logger.ILogger) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{
		registry:     registry,
		logger:       log,
		timeout:      timeout,
		fallbackKeys: fallbackKeys,
	}
}

// Answer generates the response text. The returned error, when non-nil, is
// the recoverable provider failure behind a fallback answer — the answer
// itself is always safe to show.
func (g *Generator) Answer(ctx context.Context, req Request) (string, error) {
	provider, err := g.registry.Resolve(req.Provider)
	if err != nil {
		return "", err
	}

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = g.fallbackKeys[provider.Name()]
	}
	if apiKey == "" {
		// Matching upstream behavior: a missing key yields a hint, not an error.
		return fmt.Sprintf("%s API key not provided. Please enter your API key.", provider.Name()), nil
	}

	builder := prompt.NewBuilder(req.Question, req.Chunks, req.History, req.HistoryWindow)
	creq := llm.CompletionRequest{
		System:  builder.System(),
		Prompt:  builder.User(),
		History: builder.History(),
		Model:   req.Model,
		APIKey:  apiKey,
	}

	answer, err := g.complete(ctx, provider, creq)
	if err == nil {
		return answer, nil
	}

	if llm.IsCancelled(err) {
		// Client went away; nothing to show and nothing to record.
		return "", err
	}

	g.logger.Error("response", "llm completion failed", map[string]interface{}{
		"provider": provider.Name(),
		"model":    creq.Model,
		"error":    err.Error(),
	})
	return "Sorry, I couldn't generate an answer right now. Please try again in a moment.", err
}

// complete runs the provider call with a bounded timeout and at most one
// retry on transient failure. Auth and rate-limit failures are never retried.
func (g *Generator) complete(ctx context.Context, provider llm.Provider, creq llm.CompletionRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	answer, err := provider.Complete(callCtx, creq)
	if err == nil {
		return answer, nil
	}

	if pe, ok := llm.AsProviderError(err); ok && pe.Retryable() && ctx.Err() == nil {
		g.logger.Warn("response", "transient provider failure, retrying once", map[string]interface{}{
			"provider": provider.Name(),
			"error":    err.Error(),
		})
		retryCtx, retryCancel := context.WithTimeout(ctx, g.timeout)
		defer retryCancel()
		return provider.Complete(retryCtx, creq)
	}
	return "", err
}
