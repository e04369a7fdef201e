package world

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// DoorEndpoint anchors one side of a door to a room facing.
type DoorEndpoint struct {
	Zone string    `json:"zone"`
	X    int       `json:"x"`
	Y    int       `json:"y"`
	Dir  Direction `json:"dir"`
}

// Door joins two room facings and overrides plain adjacency for both.
// A door always has exactly two endpoints and one shared open/closed
// state, so toggling it from either side is visible from both.
type Door struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// StartsOpen sets the door's state at load time.
	StartsOpen bool `json:"starts_open"`

	Endpoints []DoorEndpoint `json:"endpoints"`
}

// Validate satisfies storage.ValidatingSpec.
func (d *Door) Validate() error {
	el := errors.NewErrorList()

	if d.Name == "" {
		el.Add(fmt.Errorf("door name is required"))
	}
	if len(d.Endpoints) != 2 {
		el.Add(fmt.Errorf("door must have exactly 2 endpoints, got %d", len(d.Endpoints)))
	}
	for i, ep := range d.Endpoints {
		if ep.Zone == "" {
			el.Add(fmt.Errorf("endpoint %d: zone is required", i))
		}
		switch ep.Dir {
		case North, South, East, West:
		default:
			el.Add(fmt.Errorf("endpoint %d: invalid direction %q", i, ep.Dir))
		}
	}

	return el.Err()
}
