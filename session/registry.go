package session

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MeAiXueXi/n8n-nodes-mcp-playwright/internal/collection"
)

// Registry maps connection fingerprints to sessions. It is an owned,
// injectable instance: construct one per process (or per test), share it
// across call sites and Shutdown it when the host goes away.
type Registry struct {
	sessions *collection.SyncMap[string, *Session]

	mu      sync.Mutex
	current map[string]string // logical fingerprint -> fingerprint of the latest rotation

	idleTTL    time.Duration
	sweepEvery time.Duration
	done       chan struct{}
	stopOnce   sync.Once
}

// Option customizes a Registry.
type Option func(r *Registry)

// WithIdleTTL enables the reaper: sessions unused for longer than ttl are
// closed and removed. Disabled when ttl <= 0.
func WithIdleTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		r.idleTTL = ttl
	}
}

// WithSweepInterval overrides how often the reaper scans for idle sessions.
func WithSweepInterval(interval time.Duration) Option {
	return func(r *Registry) {
		r.sweepEvery = interval
	}
}

// New creates a Registry and starts its reaper when an idle TTL is set.
func New(options ...Option) *Registry {
	ret := &Registry{
		sessions: collection.NewSyncMap[string, *Session](),
		current:  make(map[string]string),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.idleTTL > 0 {
		if ret.sweepEvery <= 0 {
			ret.sweepEvery = ret.idleTTL / 2
		}
		go ret.sweepLoop()
	}
	return ret
}

// Resolve returns the session registered for the fingerprint, following any
// rotation so repeated calls with the same configuration converge on the
// latest session. A missing entry is created in the empty state; concurrent
// resolutions observe exactly one session.
func (r *Registry) Resolve(fingerprint string) *Session {
	r.mu.Lock()
	key := fingerprint
	if cur, ok := r.current[fingerprint]; ok {
		key = cur
	}
	r.mu.Unlock()
	ret, _ := r.sessions.GetOrPut(key, func() *Session {
		return newSession(key)
	})
	return ret
}

// Lookup returns the session registered under the exact fingerprint, if any.
func (r *Registry) Lookup(fingerprint string) (*Session, bool) {
	return r.sessions.Get(fingerprint)
}

// Rotate registers a fresh empty session for the logical configuration
// identified by fingerprint, under a newly minted fingerprint that has never
// been issued before. The previous entry is left as is for callers still
// holding it; subsequent Resolve calls with the original fingerprint land on
// the rotation. Callers pass the session they observed as stale: when the
// logical entry has already moved past it, the existing replacement is
// returned so concurrent observers of the same stale session converge on a
// single rotation. A nil stale rotates unconditionally.
func (r *Registry) Rotate(fingerprint string, stale *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stale != nil {
		cur, ok := r.current[fingerprint]
		if !ok {
			cur = fingerprint
		}
		if cur != stale.Fingerprint() {
			if replacement, found := r.sessions.Get(cur); found {
				return replacement
			}
		}
	}
	next := rotated(fingerprint)
	ret := newSession(next)
	r.sessions.Put(next, ret)
	r.current[fingerprint] = next
	return ret
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Shutdown stops the reaper and closes every session's connection.
func (r *Registry) Shutdown() error {
	r.stopOnce.Do(func() {
		close(r.done)
	})
	r.sessions.Range(func(key string, s *Session) bool {
		s.close()
		r.sessions.Delete(key)
		return true
	})
	return nil
}

// rotated derives a fingerprint for the next session of the same logical
// configuration by mixing a nonce into the hash input, so stale fingerprints
// are never silently revived.
func rotated(fingerprint string) string {
	sum := sha256.Sum256([]byte(fingerprint + "#" + uuid.NewString()))
	return hex.EncodeToString(sum[:])
}
