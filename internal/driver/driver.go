package driver

import (
	"context"
	"time"
)

const (
	DefaultTickLength = time.Second * 2
)

// Manager is anything the world heartbeat drives: regeneration,
// respawns, session sweeps.
type Manager interface {
	Tick(context.Context) error
}

// RealmDriver is the world heartbeat. Every tick it runs each manager
// in order; retaliation goroutines run on their own clocks and are not
// driven from here.
type RealmDriver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewRealmDriver(managers []Manager, opts ...RealmDriverOpt) *RealmDriver {
	d := &RealmDriver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *RealmDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *RealmDriver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
