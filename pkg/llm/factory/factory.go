package factory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"doc-assistant-be/internal/errs"
	"doc-assistant-be/pkg/llm"
	"doc-assistant-be/pkg/llm/groq"
	"doc-assistant-be/pkg/llm/huggingface"
)

// Registry resolves providers by name per request and caches model catalogs
// so repeated listings do not hammer the provider APIs.
type Registry struct {
	providers  map[string]llm.Provider
	defaultKey string
	modelCache *cache.Cache
}

func NewRegistry(defaultProvider string) *Registry {
	r := &Registry{
		providers:  make(map[string]llm.Provider),
		defaultKey: defaultProvider,
		modelCache: cache.New(15*time.Minute, 30*time.Minute),
	}
	r.Register(groq.NewGroqProvider(""))
	r.Register(huggingface.NewHuggingFaceProvider(""))
	if _, ok := r.providers[r.defaultKey]; !ok {
		r.defaultKey = "groq"
	}
	return r
}

// Register adds or replaces a provider under its own name.
func (r *Registry) Register(p llm.Provider) {
	r.providers[p.Name()] = p
}

// Resolve returns the named provider, or the default when name is empty.
func (r *Registry) Resolve(name string) (llm.Provider, error) {
	if name == "" {
		name = r.defaultKey
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, errs.ErrUnknownProvider.WithDetail("%s", name)
	}
	return p, nil
}

// Models lists a provider's models, serving cached results when fresh. Cache
// entries are keyed by provider plus a key prefix so different keys do not
// leak each other's catalogs.
func (r *Registry) Models(ctx context.Context, providerName, apiKey string) ([]llm.Model, error) {
	p, err := r.Resolve(providerName)
	if err != nil {
		return nil, err
	}

	cacheKey := p.Name() + "/" + keyPrefix(apiKey)
	if cached, found := r.modelCache.Get(cacheKey); found {
		return cached.([]llm.Model), nil
	}

	models, err := p.ListModels(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	r.modelCache.Set(cacheKey, models, cache.DefaultExpiration)
	return models, nil
}

func keyPrefix(apiKey string) string {
	if len(apiKey) > 8 {
		return apiKey[:8]
	}
	return apiKey
}
