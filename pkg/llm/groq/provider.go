package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"

	"doc-assistant-be/pkg/llm"
)

const providerName = "groq"

// GroqProvider talks to the Groq OpenAI-compatible API.
type GroqProvider struct {
	baseURL string
	client  *http.Client
}

func NewGroqProvider(baseURL string) *GroqProvider {
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	return &GroqProvider{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (p *GroqProvider) Name() string { return providerName }

func (p *GroqProvider) DefaultModel() string { return "llama-3.3-70b-versatile" }

// fallbackModels is served when the catalog cannot be fetched without a key.
var fallbackModels = []llm.Model{
	{ID: "llama-3.3-70b-versatile", Name: "Llama 3.3 70B Versatile"},
	{ID: "llama-3.1-8b-instant", Name: "Llama 3.1 8B Instant"},
	{ID: "mixtral-8x7b-32768", Name: "Mixtral 8x7B"},
	{ID: "gemma2-9b-it", Name: "Gemma 2 9B IT"},
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (p *GroqProvider) ListModels(ctx context.Context, apiKey string) ([]llm.Model, error) {
	if apiKey == "" {
		return fallbackModels, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
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

	var parsed modelsResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, llm.WrapProviderError(providerName, err)
	}

	models := make([]llm.Model, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		id := strings.ToLower(m.ID)
		// Audio models are useless for chat.
		if strings.Contains(id, "whisper") || strings.Contains(id, "tts") {
			continue
		}
		models = append(models, llm.Model{ID: m.ID, Name: displayName(m.ID)})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
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

func (p *GroqProvider) Complete(ctx context.Context, creq llm.CompletionRequest) (string, error) {
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

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creq.APIKey)

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

// displayName turns "llama-3.3-70b-versatile" into "Llama 3.3 70b Versatile".
func displayName(id string) string {
	words := strings.Split(strings.ReplaceAll(id, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
