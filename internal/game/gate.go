package game

import (
	"sync"
	"time"
)

// ActionGate rate-limits a participant's actions. Each session carries
// one gate; an action may proceed only when the scaled cooldown since
// the last consumed action has elapsed. Checking the gate never
// consumes it, so a denied or invalid action costs nothing.
type ActionGate struct {
	mu   sync.Mutex
	base time.Duration
	last time.Time
}

// NewActionGate creates a gate with the given base cooldown. The gate
// starts ready.
func NewActionGate(base time.Duration) *ActionGate {
	return &ActionGate{base: base}
}

// Ready reports whether an action may proceed at the given pace. When
// it may not, the returned duration is the remaining wait.
func (g *ActionGate) Ready(now time.Time, pace float64) (time.Duration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.last.IsZero() {
		return 0, true
	}

	remaining := g.effective(pace) - now.Sub(g.last)
	if remaining > 0 {
		return remaining, false
	}
	return 0, true
}

// Consume marks an action as taken. Call it only after the action
// actually happened.
func (g *ActionGate) Consume(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = now
}

func (g *ActionGate) effective(pace float64) time.Duration {
	if pace <= 0 {
		pace = 1
	}
	return time.Duration(float64(g.base) / pace)
}
