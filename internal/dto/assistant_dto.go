package dto

import "time"

type HealthResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
}

type ModelsRequest struct {
	Provider string `json:"provider" validate:"omitempty,oneof=groq huggingface"`
	APIKey   string `json:"api_key"`
}

type ModelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ModelsResponse struct {
	Provider string      `json:"provider"`
	Models   []ModelInfo `json:"models"`
}

type DocumentResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Type       string    `json:"type"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

type ChatRequest struct {
	Message  string `json:"message" validate:"required"`
	Provider string `json:"provider" validate:"omitempty,oneof=groq huggingface"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key"`
}

type ChatSource struct {
	ID       string  `json:"id"`
	Filename string  `json:"filename"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

type ChatResponse struct {
	Answer      string       `json:"answer"`
	Sources     []ChatSource `json:"sources"`
	SourceFiles []string     `json:"source_files"`
}

type EndSessionResponse struct {
	Ended bool `json:"ended"`
}
