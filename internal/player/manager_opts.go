package player

import "time"

type PlayerManagerOpt func(*PlayerManager)

// WithLinklessTimeout sets how long a linkless session lingers before
// the sweep removes it. Zero keeps the default.
func WithLinklessTimeout(d time.Duration) PlayerManagerOpt {
	return func(m *PlayerManager) {
		if d > 0 {
			m.linklessTimeout = d
		}
	}
}

// WithIdleTimeout sets how long a connection may sit idle before being
// cut loose. Zero disables the idle sweep.
func WithIdleTimeout(d time.Duration) PlayerManagerOpt {
	return func(m *PlayerManager) {
		m.idleTimeout = d
	}
}
