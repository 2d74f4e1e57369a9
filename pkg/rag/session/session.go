package session

import (
	"sync"
	"time"

	"doc-assistant-be/pkg/store"
	"doc-assistant-be/pkg/vectorindex"
)

// Session owns one vector index and document registry. The embedded mutex
// serializes every mutation of the index and registry; holders must check
// the state is not Destroyed before mutating, since a goroutine may still
// hold a pointer after teardown.
//
// Invariant: the index contains exactly the chunks of the currently
// registered documents — enforced by performing every add/remove of both
// under the lock.
type Session struct {
	sync.Mutex

	ID           string
	State        string
	CreatedAt    time.Time
	LastActivity time.Time

	Documents []*store.Document
	Index     *vectorindex.Index
	History   []store.ChatMessage

	// endRequested marks an explicit teardown so the eviction hook can tell
	// it apart from TTL expiry.
	endRequested bool
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		State:        store.StateCreated,
		CreatedAt:    now,
		LastActivity: now,
		Index:        vectorindex.New(),
	}
}

// Destroyed reports whether teardown already ran. Callers must hold the lock.
func (s *Session) Destroyed() bool { return s.State == store.StateDestroyed }

// FindDocument returns the registered document with the given id.
// Callers must hold the lock.
func (s *Session) FindDocument(docID string) (*store.Document, bool) {
	for _, d := range s.Documents {
		if d.ID == docID {
			return d, true
		}
	}
	return nil, false
}

// RemoveDocument drops the document from the registry and every one of its
// chunks from the index. Callers must hold the lock.
func (s *Session) RemoveDocument(docID string) bool {
	for i, d := range s.Documents {
		if d.ID != docID {
			continue
		}
		s.Documents = append(s.Documents[:i], s.Documents[i+1:]...)
		s.Index.RemoveDocument(docID)
		return true
	}
	return false
}
