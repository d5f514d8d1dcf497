package mcp

import (
	"sync"
	"time"

	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// sessionRegistry holds sessions awaiting a diagram-type selection
// between a diagram.request call and the follow-up diagram.generate.
// Entries expire after ttl so abandoned requests do not accumulate.
type sessionRegistry struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]registryEntry
}

type registryEntry struct {
	session *schema.Session
	addedAt time.Time
}

func newSessionRegistry(ttl time.Duration) *sessionRegistry {
	return &sessionRegistry{
		ttl:     ttl,
		entries: make(map[string]registryEntry),
	}
}

// Put stores a session under its ID, overwriting any earlier entry.
func (r *sessionRegistry) Put(s *schema.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	r.entries[s.ID] = registryEntry{session: s, addedAt: time.Now()}
}

// Take removes and returns the session with the given ID, if present
// and not expired.
func (r *sessionRegistry) Take(id string) (*schema.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	delete(r.entries, id)
	return e.session, true
}

// sweepLocked drops expired entries. Caller must hold mu.
func (r *sessionRegistry) sweepLocked() {
	cutoff := time.Now().Add(-r.ttl)
	for id, e := range r.entries {
		if e.addedAt.Before(cutoff) {
			delete(r.entries, id)
		}
	}
}
