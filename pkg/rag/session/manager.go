package session

import (
	"time"

	"doc-assistant-be/internal/pkg/logger"
	"doc-assistant-be/internal/repository/memory"
	"doc-assistant-be/pkg/store"
)

// Teardown reasons reported to the destroy hook.
const (
	ReasonExpired = "expired"
	ReasonEnded   = "ended"
)

// Manager owns the session lifecycle: lazy creation, activity refresh,
// TTL-driven expiry and explicit teardown. Each session moves through
// Created → Active → (Expired →) Destroyed; Destroyed is terminal and the
// identifier is immediately reusable for a fresh session.
type Manager struct {
	repo   *memory.SessionRepository
	logger logger.ILogger

	// onDestroy, when set, observes every teardown after resources are
	// released. Used to publish lifecycle events.
	onDestroy func(sessionID string, documents, messages int, reason string)
}

func NewManager(repo *memory.SessionRepository, log logger.ILogger) *Manager {
	m := &Manager{repo: repo, logger: log}
	repo.OnEvicted(func(id string, v any) {
		if s, ok := v.(*Session); ok {
			m.finalize(s)
		}
	})
	return m
}

// SetDestroyHook installs the teardown observer. Call before traffic starts.
func (m *Manager) SetDestroyHook(fn func(sessionID string, documents, messages int, reason string)) {
	m.onDestroy = fn
}

// LoadOrCreate returns the live session for the id, creating one lazily for
// an unseen (or expired) identifier. Concurrent creation of the same id
// resolves to a single record.
func (m *Manager) LoadOrCreate(id string) *Session {
	for {
		if v, found := m.repo.Get(id); found {
			return v.(*Session)
		}
		// Flush any expired entry under this id first, so its teardown runs
		// before the id is reused rather than being silently overwritten.
		m.repo.Sweep()
		s := newSession(id, time.Now())
		if err := m.repo.Add(id, s); err == nil {
			m.logger.Debug("session", "session created", map[string]interface{}{"session_id": id})
			return s
		}
		// Lost the creation race; the next Get returns the winner.
	}
}

// Load returns the live session without creating one.
func (m *Manager) Load(id string) (*Session, bool) {
	v, found := m.repo.Get(id)
	if !found {
		return nil, false
	}
	return v.(*Session), true
}

// Touch refreshes the activity timestamp and slides the TTL. Callers must
// hold the session lock; a session that saw any operation is Active.
// The refresh goes through Replace, which fails once the registry entry is
// gone: a request racing TTL expiry must not re-register the session that the
// eviction hook is about to finalize.
func (m *Manager) Touch(s *Session) {
	s.LastActivity = time.Now()
	if s.State == store.StateCreated {
		s.State = store.StateActive
	}
	if err := m.repo.Replace(s.ID, s); err != nil {
		m.logger.Debug("session", "activity refresh raced expiry", map[string]interface{}{
			"session_id": s.ID,
		})
	}
}

// End tears a session down explicitly. Ending an unknown or already
// destroyed session is a no-op, not an error.
func (m *Manager) End(id string) {
	v, found := m.repo.Get(id)
	if !found {
		return
	}
	s := v.(*Session)
	s.Lock()
	s.endRequested = true
	s.Unlock()
	m.repo.Delete(id) // fires the eviction hook, which finalizes
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int { return m.repo.Count() }

// Sweep purges expired sessions immediately instead of waiting for the next
// janitor pass. Each purge fires the eviction hook as usual.
func (m *Manager) Sweep() { m.repo.Sweep() }

// finalize releases a session's index and documents exactly once. It runs
// under the same lock as request handling, so teardown never races an
// in-flight mutation on the index.
func (m *Manager) finalize(s *Session) {
	s.Lock()
	if s.Destroyed() {
		s.Unlock()
		return
	}
	reason := ReasonExpired
	if s.endRequested {
		reason = ReasonEnded
	} else {
		s.State = store.StateExpired
	}
	documents := len(s.Documents)
	messages := len(s.History)
	s.State = store.StateDestroyed
	s.Index.Reset()
	s.Documents = nil
	s.History = nil
	s.Unlock()

	m.logger.Info("session", "session destroyed", map[string]interface{}{
		"session_id": s.ID,
		"documents":  documents,
		"messages":   messages,
		"reason":     reason,
	})
	if m.onDestroy != nil {
		m.onDestroy(s.ID, documents, messages, reason)
	}
}
