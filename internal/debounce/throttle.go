package debounce

import (
	"sync"
	"time"
)

// Throttle runs an action at most once per interval and drops the calls in
// between.
type Throttle struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval, now: time.Now}
}

// Execute runs action and returns true, unless the previous successful
// Execute was less than interval ago, in which case it returns false.
func (t *Throttle) Execute(action func()) bool {
	t.mu.Lock()

	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		t.mu.Unlock()
		return false
	}

	t.last = now
	t.mu.Unlock()

	action()

	return true
}

// Reset clears the cooldown so the next Execute runs.
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = time.Time{}
}
