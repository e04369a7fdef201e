package commands

import (
	"context"
	"fmt"

	"github.com/pixil98/go-realm/internal/display"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/world"
)

func (h *Handler) open(ctx context.Context, s *game.Session, args []string) error {
	return h.setDoor(s, args, true)
}

func (h *Handler) close(ctx context.Context, s *game.Session, args []string) error {
	return h.setDoor(s, args, false)
}

// setDoor toggles the door on a facing. Door state is shared with the
// far endpoint, so the other room hears it move too.
func (h *Handler) setDoor(s *game.Session, args []string, open bool) error {
	verb := "open"
	if !open {
		verb = "close"
	}

	if len(args) == 0 {
		return newUserErrorf("%s which direction?", display.Capitalize(verb))
	}
	dir, ok := world.ParseDirection(args[0])
	if !ok {
		return newUserErrorf("%q is not a direction.", args[0])
	}

	name, err := h.reg.Graph().SetDoor(s.Loc, dir, open)
	if err != nil {
		return NewUserError(display.Capitalize(err.Error()) + ".")
	}

	h.bcast.ToSession(s.CharId, fmt.Sprintf("You %s the %s.", verb, name))
	h.bcast.ToRoomExcept(s.Loc, fmt.Sprintf("%s %ss the %s.", s.Character.Name, verb, name), s.CharId)
	h.bcast.ToRoom(s.Loc.Step(dir), fmt.Sprintf("The %s %ss from the other side.", name, verb))

	return nil
}
