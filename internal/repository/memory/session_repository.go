package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionRepository is the volatile session registry. Entries expire after
// the session TTL; the cache janitor purges them on the sweep interval and
// fires the eviction hook, which is also how explicit teardown is observed.
// Values are opaque here so the session package can own its record type.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl, sweepInterval time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	return &SessionRepository{cache: cache.New(ttl, sweepInterval)}
}

// Add stores an entry only if the id is unused (or expired), so concurrent
// lazy creation of the same session cannot produce two records.
func (r *SessionRepository) Add(id string, session any) error {
	return r.cache.Add(id, session, cache.DefaultExpiration)
}

// Replace refreshes the TTL of an entry that is still live. It fails when the
// entry has expired or been removed, so a refresh can never re-register one.
func (r *SessionRepository) Replace(id string, session any) error {
	return r.cache.Replace(id, session, cache.DefaultExpiration)
}

// Get returns the live entry. Expired-but-not-yet-purged entries count as
// absent; go-cache applies that lazy expiry check itself.
func (r *SessionRepository) Get(id string) (any, bool) {
	return r.cache.Get(id)
}

// Delete removes the entry, firing the eviction hook.
func (r *SessionRepository) Delete(id string) {
	r.cache.Delete(id)
}

// Count returns the number of registered sessions (may briefly include
// expired entries awaiting the next sweep).
func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

// Sweep deletes all expired entries now, firing the eviction hook for each.
func (r *SessionRepository) Sweep() {
	r.cache.DeleteExpired()
}

// OnEvicted installs the hook run for every removed entry, whether evicted
// by TTL or deleted explicitly.
func (r *SessionRepository) OnEvicted(fn func(id string, session any)) {
	r.cache.OnEvicted(func(id string, v any) { fn(id, v) })
}
