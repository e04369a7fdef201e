package world

import (
	"fmt"
	"sync"

	"github.com/pixil98/go-realm/internal/storage"
)

// voidRoom is handed out for any location that falls outside every
// loaded zone, so callers never have to nil-check room lookups.
var voidRoom = &Room{
	Name:        "The Void",
	Description: "A featureless gray expanse. You should not be here.",
}

// ErrNoExit is returned when a move would leave the zone grid.
var ErrNoExit = fmt.Errorf("there is no exit that way")

// Exit describes one traversable (or blocked) facing of a room.
type Exit struct {
	Dir    Direction
	Target Location

	// DoorName is set when a door sits on this facing.
	DoorName string
	HasDoor  bool
	Open     bool
}

// Passable reports whether a participant can move through this exit.
func (e Exit) Passable() bool {
	return !e.HasDoor || e.Open
}

type doorState struct {
	id   string
	door *Door
	open bool
}

// Graph is the runtime view of the world: every zone grid plus shared
// door state. Zones and doors are immutable after construction; the
// only mutable state is whether each door is open, which is why a
// single RWMutex suffices.
type Graph struct {
	zones map[string]*Zone

	// byFacing maps "zone:x,y:dir" to the door on that facing. Both
	// endpoints of a door resolve to the same *doorState, so a toggle
	// from either side is immediately visible from both.
	byFacing map[string]*doorState

	mu sync.RWMutex
}

// NewGraph builds the runtime graph. Door endpoints must land inside
// their zone's grid.
func NewGraph(zones map[string]*Zone, doors map[string]*Door) (*Graph, error) {
	g := &Graph{
		zones:    zones,
		byFacing: map[string]*doorState{},
	}

	for id, door := range doors {
		state := &doorState{id: id, door: door, open: door.StartsOpen}
		for _, ep := range door.Endpoints {
			zone, ok := zones[ep.Zone]
			if !ok {
				return nil, fmt.Errorf("door %s: unknown zone %q", id, ep.Zone)
			}
			if !zone.inBounds(ep.X, ep.Y) {
				return nil, fmt.Errorf("door %s: endpoint (%d,%d) outside zone %q", id, ep.X, ep.Y, ep.Zone)
			}
			key := facingKey(Location{Zone: storage.Identifier(ep.Zone), X: ep.X, Y: ep.Y}, ep.Dir)
			if _, exists := g.byFacing[key]; exists {
				return nil, fmt.Errorf("door %s: facing %s already has a door", id, key)
			}
			g.byFacing[key] = state
		}
	}

	return g, nil
}

func facingKey(loc Location, dir Direction) string {
	return fmt.Sprintf("%s:%s", loc, dir)
}

// Contains reports whether the location falls inside a loaded zone's
// grid. RoomAt hands out the void placeholder for anything else, so
// existence checks go through here.
func (g *Graph) Contains(loc Location) bool {
	zone, ok := g.zones[loc.Zone.String()]
	return ok && zone.inBounds(loc.X, loc.Y)
}

// RoomAt returns the room at the location, or the void placeholder when
// the location is outside every zone.
func (g *Graph) RoomAt(loc Location) *Room {
	zone, ok := g.zones[loc.Zone.String()]
	if !ok || !zone.inBounds(loc.X, loc.Y) {
		return voidRoom
	}
	return &zone.Rows[loc.Y][loc.X]
}

// ZoneName returns the display name for a zone id.
func (g *Graph) ZoneName(id storage.Identifier) string {
	zone, ok := g.zones[id.String()]
	if !ok {
		return id.String()
	}
	return zone.Name
}

// EntryOf returns the entry location of a zone.
func (g *Graph) EntryOf(id storage.Identifier) (Location, bool) {
	zone, ok := g.zones[id.String()]
	if !ok {
		return Location{}, false
	}
	return Location{Zone: id, X: zone.EntryX, Y: zone.EntryY}, true
}

// Exits lists the usable facings of a room in display order. Facings
// that would leave the grid are omitted; facings with a closed door are
// included but not passable.
func (g *Graph) Exits(loc Location) []Exit {
	zone, ok := g.zones[loc.Zone.String()]
	if !ok {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	var exits []Exit
	for _, dir := range Directions {
		target := loc.Step(dir)
		if !zone.inBounds(target.X, target.Y) {
			continue
		}

		exit := Exit{Dir: dir, Target: target}
		if state, found := g.byFacing[facingKey(loc, dir)]; found {
			exit.HasDoor = true
			exit.DoorName = state.door.Name
			exit.Open = state.open
		}
		exits = append(exits, exit)
	}

	return exits
}

// Traverse resolves a move attempt. It returns the destination, or
// ErrNoExit at a grid edge, or a closed-door error.
func (g *Graph) Traverse(loc Location, dir Direction) (Location, error) {
	zone, ok := g.zones[loc.Zone.String()]
	if !ok {
		return Location{}, ErrNoExit
	}

	target := loc.Step(dir)
	if !zone.inBounds(target.X, target.Y) {
		return Location{}, ErrNoExit
	}

	g.mu.RLock()
	state, found := g.byFacing[facingKey(loc, dir)]
	g.mu.RUnlock()

	if found && !state.open {
		return Location{}, fmt.Errorf("the %s is closed", state.door.Name)
	}

	return target, nil
}

// DoorAt returns the door on a facing, if any.
func (g *Graph) DoorAt(loc Location, dir Direction) (name string, open bool, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	state, found := g.byFacing[facingKey(loc, dir)]
	if !found {
		return "", false, false
	}
	return state.door.Name, state.open, true
}

// SetDoor opens or closes the door on a facing. The state change is
// shared with the far endpoint.
func (g *Graph) SetDoor(loc Location, dir Direction, open bool) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, found := g.byFacing[facingKey(loc, dir)]
	if !found {
		return "", fmt.Errorf("there is no door to the %s", dir)
	}

	if state.open == open {
		verb := "open"
		if !open {
			verb = "closed"
		}
		return "", fmt.Errorf("the %s is already %s", state.door.Name, verb)
	}

	state.open = open
	return state.door.Name, nil
}

// PortalAt returns the portal in the room, if any.
func (g *Graph) PortalAt(loc Location) (Location, bool) {
	room := g.RoomAt(loc)
	if room.Portal == nil {
		return Location{}, false
	}
	return Location{Zone: storage.Identifier(room.Portal.Zone), X: room.Portal.X, Y: room.Portal.Y}, true
}

// SpawnPoints walks every room in every zone and yields each creature
// spawn with its location.
func (g *Graph) SpawnPoints(visit func(template string, loc Location)) {
	for id, zone := range g.zones {
		for y := range zone.Rows {
			for x := range zone.Rows[y] {
				for _, template := range zone.Rows[y][x].Spawns {
					visit(template, Location{Zone: storage.Identifier(id), X: x, Y: y})
				}
			}
		}
	}
}
