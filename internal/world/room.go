package world

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/loot"
)

// Room is a single cell of a zone grid.
type Room struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Search, if present, lets participants attempt an ability check to
	// recover a one-time loot cache from this room.
	Search *SearchCheck `json:"search,omitempty"`

	// Portal, if present, warps a participant who enters it to a fixed
	// location in another zone.
	Portal *Portal `json:"portal,omitempty"`

	// Spawns lists creature template ids placed here at zone load.
	// Duplicate a template id to spawn more than one.
	Spawns []string `json:"spawns,omitempty"`
}

func (r *Room) Validate() error {
	el := errors.NewErrorList()

	if r.Name == "" {
		el.Add(fmt.Errorf("room name is required"))
	}
	if r.Search != nil {
		el.Add(r.Search.Validate())
	}
	if r.Portal != nil {
		el.Add(r.Portal.Validate())
	}

	return el.Err()
}

// SearchCheck describes a hidden cache. The loot can only be recovered
// once per room for the lifetime of the process; the governing registry
// keys harvested caches by (zone, x, y).
type SearchCheck struct {
	// Difficulty the d20 + ability modifier roll must meet or beat.
	Difficulty int `json:"difficulty"`

	// Ability whose modifier applies to the roll (e.g. "wis").
	Ability string `json:"ability"`

	SuccessText string `json:"success_text"`
	FailureText string `json:"failure_text"`

	// Gold and Drops seed the recovered cache.
	GoldMin int             `json:"gold_min,omitempty"`
	GoldMax int             `json:"gold_max,omitempty"`
	Drops   []loot.DropSpec `json:"drops,omitempty"`
}

func (s *SearchCheck) Validate() error {
	el := errors.NewErrorList()

	if s.Difficulty < 1 {
		el.Add(fmt.Errorf("search difficulty must be positive"))
	}
	if s.Ability == "" {
		el.Add(fmt.Errorf("search ability is required"))
	}
	if s.GoldMax < s.GoldMin {
		el.Add(fmt.Errorf("search gold_max must be >= gold_min"))
	}
	for i, d := range s.Drops {
		err := d.Validate()
		if err != nil {
			el.Add(fmt.Errorf("drop %d: %w", i, err))
		}
	}

	return el.Err()
}

// Portal is a fixed warp to another zone.
type Portal struct {
	Zone string `json:"zone"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (p *Portal) Validate() error {
	if p.Zone == "" {
		return fmt.Errorf("portal zone is required")
	}
	return nil
}
