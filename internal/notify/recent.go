package notify

import (
	"sync"
	"time"
)

type recentEntry struct {
	fingerprint string
	at          time.Time
}

// recentRing is a thread-safe fixed-size ring of recently dispatched
// alert fingerprints. Old entries are overwritten as new ones arrive, so
// memory stays bounded no matter how long the daemon runs.
type recentRing struct {
	mu      sync.Mutex
	entries []recentEntry
	size    int
	pos     int
	full    bool
}

// newRecentRing creates a ring remembering the last n dispatches.
func newRecentRing(n int) *recentRing {
	return &recentRing{
		entries: make([]recentEntry, n),
		size:    n,
	}
}

func (r *recentRing) add(fingerprint string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.pos] = recentEntry{fingerprint: fingerprint, at: at}
	r.pos = (r.pos + 1) % r.size
	if r.pos == 0 {
		r.full = true
	}
}

// seenWithin reports whether fingerprint was added less than window
// before now.
func (r *recentRing) seenWithin(fingerprint string, now time.Time, window time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.pos
	if r.full {
		n = r.size
	}
	for i := 0; i < n; i++ {
		e := r.entries[i]
		if e.fingerprint == fingerprint && now.Sub(e.at) < window {
			return true
		}
	}
	return false
}
