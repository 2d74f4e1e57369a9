package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"doc-assistant-be/pkg/llm"
)

const providerName = "huggingface"

// HuggingFaceProvider talks to the HuggingFace inference router
// (OpenAI-compatible) for completions, and to the hub API for the model
// catalog.
type HuggingFaceProvider struct {
	baseURL string
	hubURL  string
	client  *http.Client
}

func NewHuggingFaceProvider(baseURL string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = "https://router.huggingface.co/v1"
	}
	return &HuggingFaceProvider{
		baseURL: baseURL,
		hubURL:  "https://huggingface.co/api/models",
		client:  &http.Client{},
	}
}

func (p *HuggingFaceProvider) Name() string { return providerName }

func (p *HuggingFaceProvider) DefaultModel() string { return "meta-llama/Llama-3.2-3B-Instruct" }

var fallbackModels = []llm.Model{
	{ID: "meta-llama/Llama-3.2-3B-Instruct", Name: "Llama 3.2 3B Instruct"},
	{ID: "meta-llama/Llama-3.1-8B-Instruct", Name: "Llama 3.1 8B Instruct"},
	{ID: "mistralai/Mistral-7B-Instruct-v0.3", Name: "Mistral 7B Instruct"},
	{ID: "microsoft/Phi-3-mini-4k-instruct", Name: "Phi 3 Mini 4K Instruct"},
	{ID: "Qwen/Qwen2.5-7B-Instruct", Name: "Qwen 2.5 7B Instruct"},
}

type hubModel struct {
	ModelID string `json:"modelId"`
	ID      string `json:"id"`
}

func (p *HuggingFaceProvider) ListModels(ctx context.Context, apiKey string) ([]llm.Model, error) {
	if apiKey == "" {
		return fallbackModels, nil
	}

	params := url.Values{}
	params.Set("pipeline_tag", "text-generation")
	params.Set("filter", "conversational")
	params.Set("inference", "warm")
	params.Set("sort", "downloads")
	params.Set("direction", "-1")
	params.Set("limit", "30")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.hubURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, llm.WrapProviderError(providerName, err)
	}
	defer resp.Body.Close()

	respBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, llm.NewProviderError(providerName, resp.StatusCode, string(respBytes))
	}

	var hub []hubModel
	if err := json.Unmarshal(respBytes, &hub); err != nil {
		return nil, llm.WrapProviderError(providerName, err)
	}

	var models []llm.Model
	for _, m := range hub {
		id := m.ModelID
		if id == "" {
			id = m.ID
		}
		lower := strings.ToLower(id)
		if !strings.Contains(lower, "instruct") && !strings.Contains(lower, "chat") && !strings.Contains(lower, "it") {
			continue
		}
		name := id
		if idx := strings.LastIndex(id, "/"); idx >= 0 {
			name = id[idx+1:]
		}
		models = append(models, llm.Model{ID: id, Name: strings.ReplaceAll(name, "-", " ")})
	}
	if len(models) == 0 {
		return fallbackModels, nil
	}
	return models, nil
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []llm.Message `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *HuggingFaceProvider) Complete(ctx context.Context, creq llm.CompletionRequest) (string, error) {
	model := creq.Model
	if model == "" {
		model = p.DefaultModel()
	}
	maxTokens := creq.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	messages := make([]llm.Message, 0, len(creq.History)+2)
	if creq.System != "" {
		messages = append(messages, llm.Message{Role: "system", Content: creq.System})
	}
	messages = append(messages, creq.History...)
	messages = append(messages, llm.Message{Role: "user", Content: creq.Prompt})

	body, err := json.Marshal(chatRequest{Model: model, Messages: messages, MaxTokens: maxTokens})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if creq.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+creq.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", llm.WrapProviderError(providerName, err)
	}
	defer resp.Body.Close()

	respBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", llm.NewProviderError(providerName, resp.StatusCode, string(respBytes))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", llm.WrapProviderError(providerName, err)
	}
	if parsed.Error != nil {
		return "", llm.NewProviderError(providerName, resp.StatusCode, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", llm.NewProviderError(providerName, resp.StatusCode, "empty choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}
