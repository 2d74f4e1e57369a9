package store

import "time"

// Document is a single uploaded file registered in a session.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Type       string    `json:"type"`
	Text       string    `json:"-"`
	ChunkIDs   []string  `json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Chunk is an immutable contiguous span of one document's text.
// Source carries the originating filename for attribution.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Source     string `json:"source"`
	Index      int    `json:"index"`
	Text       string `json:"text"`
}

// RetrievedChunk is a chunk plus its similarity score, produced per query.
type RetrievedChunk struct {
	Chunk
	Score float64 `json:"score"`
}

// ChatMessage is one turn of a session's conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session lifecycle states.
const (
	StateCreated   = "CREATED"
	StateActive    = "ACTIVE"
	StateExpired   = "EXPIRED"
	StateDestroyed = "DESTROYED"
)
