package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/player"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
)

const defaultActionCooldown = 3 * time.Second

type WorldConfig struct {
	HomeZone string `json:"home_zone"`
	HomeX    int    `json:"home_x"`
	HomeY    int    `json:"home_y"`

	ActionCooldown  string `json:"action_cooldown,omitempty"`
	LinklessTimeout string `json:"linkless_timeout,omitempty"`
	IdleTimeout     string `json:"idle_timeout,omitempty"`
}

func (c *WorldConfig) validate() error {
	el := errors.NewErrorList()

	if c.HomeZone == "" {
		el.Add(fmt.Errorf("home_zone is required"))
	}

	for name, val := range map[string]string{
		"action_cooldown":  c.ActionCooldown,
		"linkless_timeout": c.LinklessTimeout,
		"idle_timeout":     c.IdleTimeout,
	} {
		if val == "" {
			continue
		}
		_, err := time.ParseDuration(val)
		if err != nil {
			el.Add(fmt.Errorf("parsing %s: %w", name, err))
		}
	}

	return el.Err()
}

// home is where new characters start and where characters whose saved
// location no longer resolves are placed.
func (c *WorldConfig) home() world.Location {
	return world.Location{
		Zone: storage.Identifier(c.HomeZone),
		X:    c.HomeX,
		Y:    c.HomeY,
	}
}

func (c *WorldConfig) actionCooldown() time.Duration {
	if c.ActionCooldown == "" {
		return defaultActionCooldown
	}
	d, err := time.ParseDuration(c.ActionCooldown)
	if err != nil {
		return defaultActionCooldown
	}
	return d
}

func (c *WorldConfig) playerManagerOpts() []player.PlayerManagerOpt {
	var opts []player.PlayerManagerOpt
	if c.LinklessTimeout != "" {
		if d, err := time.ParseDuration(c.LinklessTimeout); err == nil {
			opts = append(opts, player.WithLinklessTimeout(d))
		}
	}
	if c.IdleTimeout != "" {
		if d, err := time.ParseDuration(c.IdleTimeout); err == nil {
			opts = append(opts, player.WithIdleTimeout(d))
		}
	}
	return opts
}
