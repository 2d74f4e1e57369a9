package events

import "time"

// Topic names for the in-process event bus.
const (
	TopicDocumentIngested = "document.ingested"
	TopicSessionDestroyed = "session.destroyed"
)

// DocumentIngested is published after a document has been chunked, embedded
// and added to a session index.
type DocumentIngested struct {
	SessionID  string    `json:"session_id"`
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SessionDestroyed is published once per session, after teardown completes.
// Reason is "expired" or "ended".
type SessionDestroyed struct {
	SessionID  string    `json:"session_id"`
	Reason     string    `json:"reason"`
	Documents  int       `json:"documents"`
	Messages   int       `json:"messages"`
	OccurredAt time.Time `json:"occurred_at"`
}
