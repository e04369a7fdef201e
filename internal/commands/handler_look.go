package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-realm/internal/display"
	"github.com/pixil98/go-realm/internal/game"
)

// look renders the current room, or inspects a named creature,
// participant, or drop.
func (h *Handler) look(ctx context.Context, s *game.Session, args []string) error {
	if len(args) == 0 {
		h.bcast.ToSession(s.CharId, h.renderRoom(s))
		return nil
	}

	name := strings.Join(args, " ")

	if c := h.coord.FindCreature(s.Loc, name); c != nil {
		desc := c.Spec.Description
		if desc == "" {
			desc = fmt.Sprintf("A %s.", c.Name())
		}
		h.bcast.ToSession(s.CharId, fmt.Sprintf("%s\r\nIt looks %s.", display.Wrap(desc), c.Condition()))
		return nil
	}

	if other := h.reg.FindSessionAt(s.Loc, name); other != nil {
		spec := game.Classes[other.Character.Class]
		h.bcast.ToSession(s.CharId, fmt.Sprintf("%s, a level %d %s.", other.Character.Name, other.Character.Level, spec.Name))
		return nil
	}

	for _, entry := range h.reg.DropsAt(s.Loc) {
		if strings.EqualFold(entry.Name, name) || strings.EqualFold(entry.ItemKey, name) {
			h.bcast.ToSession(s.CharId, display.Wrap(entry.Description))
			return nil
		}
	}

	return newUserErrorf("You don't see %s here.", name)
}

// renderRoom builds the full room snapshot a participant sees on
// arrival or on a bare look.
func (h *Handler) renderRoom(s *game.Session) string {
	graph := h.reg.Graph()
	room := graph.RoomAt(s.Loc)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s (%s)\r\n", room.Name, graph.ZoneName(s.Loc.Zone)))
	b.WriteString(display.Wrap(room.Description))
	b.WriteString("\r\n")

	var exits []string
	for _, exit := range graph.Exits(s.Loc) {
		label := string(exit.Dir)
		if exit.HasDoor {
			state := "open"
			if !exit.Open {
				state = "closed"
			}
			label = fmt.Sprintf("%s (the %s, %s)", label, exit.DoorName, state)
		}
		exits = append(exits, label)
	}
	if len(exits) == 0 {
		b.WriteString("There are no obvious exits.\r\n")
	} else {
		b.WriteString(fmt.Sprintf("Exits: %s\r\n", strings.Join(exits, ", ")))
	}

	if room.Portal != nil {
		b.WriteString("A shimmering portal hangs in the air here.\r\n")
	}

	for _, c := range h.coord.CreaturesAt(s.Loc) {
		b.WriteString(fmt.Sprintf("The %s is here (%s).\r\n", c.Name(), c.Condition()))
	}

	if drops := h.reg.DropsAt(s.Loc); len(drops) > 0 {
		var names []string
		for _, entry := range drops {
			names = append(names, entry.Name)
		}
		b.WriteString(fmt.Sprintf("On the ground: %s.\r\n", strings.Join(names, ", ")))
	}

	var others []string
	for _, other := range h.reg.SessionsAt(s.Loc) {
		if other.CharId == s.CharId {
			continue
		}
		label := other.Character.Name
		if flags := other.Flags(); len(flags) > 0 {
			label = fmt.Sprintf("%s (%s)", label, strings.Join(flags, ", "))
		}
		others = append(others, label)
	}
	if len(others) > 0 {
		b.WriteString(fmt.Sprintf("Also here: %s.\r\n", strings.Join(others, ", ")))
	}

	return strings.TrimSuffix(b.String(), "\r\n")
}
