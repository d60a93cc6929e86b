package engine

import (
	"sync"
	"time"

	"serialterm/internal/model"
)

// Tracker maintains the last-seen timestamp per direction and computes the
// inter-frame delay attached to each frame. Reset on every successful
// connect so the first frame in a direction reports a zero delay.
type Tracker struct {
	mu   sync.Mutex
	last map[model.Direction]time.Time
}

// NewTracker creates a tracker with no history
func NewTracker() *Tracker {
	return &Tracker{last: make(map[model.Direction]time.Time)}
}

// Reset clears the per-direction history
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = make(map[model.Direction]time.Time)
}

// Enrich returns the delay since the previous frame in the same direction,
// or 0 for the first frame, and records now as the new last-seen time.
func (t *Tracker) Enrich(dir model.Direction, now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	var delay time.Duration
	if last, ok := t.last[dir]; ok {
		delay = now.Sub(last)
		if delay < 0 {
			delay = 0
		}
	}
	t.last[dir] = now
	return delay
}
