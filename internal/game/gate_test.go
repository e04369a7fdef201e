package game

import (
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestActionGate(t *testing.T) {
	base := 4 * time.Second
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		pace         float64
		checkAfter   time.Duration
		expReady     bool
		expRemaining time.Duration
	}{
		"ready after full cooldown": {
			pace:       1.0,
			checkAfter: 4 * time.Second,
			expReady:   true,
		},
		"blocked mid cooldown": {
			pace:         1.0,
			checkAfter:   1 * time.Second,
			expReady:     false,
			expRemaining: 3 * time.Second,
		},
		"fast pace shortens cooldown": {
			pace:       1.25,
			checkAfter: 3200 * time.Millisecond,
			expReady:   true,
		},
		"slow pace lengthens cooldown": {
			pace:         0.75,
			checkAfter:   4 * time.Second,
			expReady:     false,
			expRemaining: 1333333333 * time.Nanosecond,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			g := NewActionGate(base)
			g.Consume(start)

			remaining, ready := g.Ready(start.Add(tt.checkAfter), tt.pace)
			testutil.AssertEqual(t, "ready", ready, tt.expReady)
			if !tt.expReady {
				testutil.AssertEqual(t, "remaining", remaining, tt.expRemaining)
			}
		})
	}
}

func TestActionGate_StartsReady(t *testing.T) {
	g := NewActionGate(4 * time.Second)
	_, ready := g.Ready(time.Now(), 1.0)
	testutil.AssertEqual(t, "fresh gate ready", ready, true)
}

func TestActionGate_ReadyDoesNotConsume(t *testing.T) {
	base := 4 * time.Second
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	g := NewActionGate(base)
	g.Consume(start)

	// Repeated denied checks must not push the window out.
	for i := range 10 {
		_, ready := g.Ready(start.Add(time.Duration(i)*time.Second/10), 1.0)
		testutil.AssertEqual(t, "denied", ready, false)
	}

	_, ready := g.Ready(start.Add(base), 1.0)
	testutil.AssertEqual(t, "ready after base", ready, true)
}
