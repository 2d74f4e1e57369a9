package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"doc-assistant-be/internal/errs"
)

// OllamaProvider embeds through a local Ollama server (e.g. nomic-embed-text).
// Selected by config when a real embedding model is preferred over the local
// hashed-token one; both satisfy the same Provider contract.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client

	dimension int
}

func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

// Dimension is only known after the first successful call; the index fixes
// its own dimension from the first added vector either way.
func (p *OllamaProvider) Dimension() int { return p.dimension }

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (p *OllamaProvider) Embed(text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errs.ErrEmbeddingFailed.WithDetail("empty input text")
	}

	body, err := json.Marshal(ollamaEmbeddingRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/embeddings", p.baseURL)
	resp, err := p.client.Post(endpoint, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, errs.ErrEmbeddingFailed.WithCause(err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.ErrEmbeddingFailed.WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errs.ErrEmbeddingFailed.WithDetail("ollama status %d: %s", resp.StatusCode, string(respBytes))
	}

	var ollamaResp ollamaEmbeddingResponse
	if err := json.Unmarshal(respBytes, &ollamaResp); err != nil {
		return nil, errs.ErrEmbeddingFailed.WithCause(err)
	}

	values := make([]float32, len(ollamaResp.Embedding))
	for i, v := range ollamaResp.Embedding {
		values[i] = float32(v)
	}
	if p.dimension == 0 {
		p.dimension = len(values)
	}

	// Cosine similarity in the index assumes unit vectors.
	return Normalize(values), nil
}

func (p *OllamaProvider) EmbedBatch(texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := p.Embed(text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}
