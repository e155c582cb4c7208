package session

import (
	"context"
	"crypto/rand"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID returns a new ULID string (26 chars) for a session.
func NewID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Registry keeps live sessions in memory and expires idle ones.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry creates a registry that expires sessions idle for longer than ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Add stores a session, replacing and closing any session with the same ID.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	old, exists := r.sessions[s.ID()]
	r.sessions[s.ID()] = &entry{session: s, lastSeen: r.now()}
	r.mu.Unlock()

	if exists && old.session != s {
		old.session.Close()
	}
}

// GetOrAdd returns the session with the given ID, or stores the one build
// returns when there is none. When two callers race, the first stored session
// wins and the loser's session is closed. loaded reports whether an existing
// session was returned.
func (r *Registry) GetOrAdd(id string, build func() *Session) (s *Session, loaded bool) {
	if s, ok := r.Get(id); ok {
		return s, true
	}

	fresh := build()

	r.mu.Lock()
	if e, exists := r.sessions[id]; exists {
		e.lastSeen = r.now()
		r.mu.Unlock()
		fresh.Close()
		return e.session, true
	}
	r.sessions[id] = &entry{session: fresh, lastSeen: r.now()}
	r.mu.Unlock()
	return fresh, false
}

// Get returns the session with the given ID and marks it as recently used.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.sessions[id]
	if !exists {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.session, true
}

// Remove closes and forgets a session. It reports whether the session existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	e, exists := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if exists {
		e.session.Close()
	}
	return exists
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Run expires idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Debug("expired idle sessions", "count", n)
			}
		}
	}
}

// Sweep removes sessions idle for longer than the TTL and returns how many it
// removed. A session with observers counts as in use and is kept.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	var expired []*Session
	for id, e := range r.sessions {
		if e.session.Observers() > 0 {
			e.lastSeen = now
			continue
		}
		if now.Sub(e.lastSeen) > r.ttl {
			expired = append(expired, e.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}
