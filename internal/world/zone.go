package world

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/storage"
)

// Zone is a named grid of rooms loaded from asset files. Coordinates are
// (x, y) with y increasing southward, matching client map rendering.
type Zone struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	// Entry is where participants arrive when warped or respawned into
	// this zone without an explicit destination.
	EntryX int `json:"entry_x"`
	EntryY int `json:"entry_y"`

	// Rows holds the room grid, indexed [y][x].
	Rows [][]Room `json:"rows"`
}

// Validate satisfies storage.ValidatingSpec.
func (z *Zone) Validate() error {
	el := errors.NewErrorList()

	if z.Name == "" {
		el.Add(fmt.Errorf("zone name is required"))
	}
	if z.Width < 1 || z.Height < 1 {
		el.Add(fmt.Errorf("zone dimensions must be positive"))
	}

	if len(z.Rows) != z.Height {
		el.Add(fmt.Errorf("expected %d rows, got %d", z.Height, len(z.Rows)))
	}
	for y, row := range z.Rows {
		if len(row) != z.Width {
			el.Add(fmt.Errorf("row %d: expected %d rooms, got %d", y, z.Width, len(row)))
		}
		for x := range row {
			err := row[x].Validate()
			if err != nil {
				el.Add(fmt.Errorf("room (%d,%d): %w", x, y, err))
			}
		}
	}

	if !z.inBounds(z.EntryX, z.EntryY) {
		el.Add(fmt.Errorf("entry point (%d,%d) is out of bounds", z.EntryX, z.EntryY))
	}

	return el.Err()
}

func (z *Zone) inBounds(x, y int) bool {
	return x >= 0 && x < z.Width && y >= 0 && y < z.Height
}

// Location identifies a single room anywhere in the world.
type Location struct {
	Zone storage.Identifier `json:"zone"`
	X    int                `json:"x"`
	Y    int                `json:"y"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d,%d", l.Zone, l.X, l.Y)
}

// Step returns the location one room over in the given direction. It
// performs no bounds checking; callers resolve through the Graph.
func (l Location) Step(dir Direction) Location {
	dx, dy := dir.Delta()
	return Location{Zone: l.Zone, X: l.X + dx, Y: l.Y + dy}
}

// Direction is one of the four cardinal movement directions.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Directions lists all directions in display order.
var Directions = []Direction{North, South, East, West}

// Delta returns the coordinate offset for the direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	}
	return 0, 0
}

// Opposite returns the reverse direction, used to match the far side of
// a door to its near side.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return d
}

// ParseDirection resolves user input like "n" or "north".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "n", "north":
		return North, true
	case "s", "south":
		return South, true
	case "e", "east":
		return East, true
	case "w", "west":
		return West, true
	}
	return "", false
}
