package session

import (
	"time"
)

func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(r.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case now := <-ticker.C:
			r.sweep(now)
		}
	}
}

// sweep closes and removes sessions idle past the TTL. Sessions with a
// handshake in flight are skipped; their lastUsed resets on completion.
func (r *Registry) sweep(now time.Time) int {
	evicted := 0
	cutoff := now.Add(-r.idleTTL)
	r.sessions.Range(func(key string, s *Session) bool {
		lastUsed, status := s.idleSince()
		if status == StatusConnecting || lastUsed.After(cutoff) {
			return true
		}
		s.close()
		r.sessions.Delete(key)
		evicted++
		return true
	})
	if evicted > 0 {
		r.pruneAliases()
	}
	return evicted
}

// pruneAliases drops rotation pointers whose target session is gone.
func (r *Registry) pruneAliases() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for logical, key := range r.current {
		if _, ok := r.sessions.Get(key); !ok {
			delete(r.current, logical)
		}
	}
}
