package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pixil98/go-realm/internal/display"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/world"
)

// walk handles "go <direction>".
func (h *Handler) walk(ctx context.Context, s *game.Session, args []string) error {
	if len(args) == 0 {
		return NewUserError("Go where?")
	}
	dir, ok := world.ParseDirection(args[0])
	if !ok {
		return newUserErrorf("%q is not a direction.", args[0])
	}
	return h.move(ctx, s, dir)
}

// move walks a participant one room over. Movement runs through the
// action gate, so fleeing mid-fight still costs the action cooldown.
func (h *Handler) move(ctx context.Context, s *game.Session, dir world.Direction) error {
	now := time.Now()
	derived := s.Derive(h.equippedWeapon(s), now)
	if remaining, ready := s.Gate().Ready(now, derived.Pace); !ready {
		return newUserErrorf("You are still recovering (%.1fs).", remaining.Seconds())
	}

	dest, err := h.reg.Graph().Traverse(s.Loc, dir)
	if err != nil {
		if errors.Is(err, world.ErrNoExit) {
			return NewUserError("There is no exit that way.")
		}
		return NewUserError(display.Capitalize(err.Error()) + ".")
	}
	s.Gate().Consume(now)

	// Walking out of a fight is how you flee.
	h.coord.Disengage(s)

	from := s.Loc
	h.bcast.ToRoomExcept(from, fmt.Sprintf("%s leaves %s.", s.Character.Name, dir), s.CharId)

	err = h.reg.MoveSession(s, dest)
	if err != nil {
		return fmt.Errorf("moving session: %w", err)
	}

	h.bcast.ToRoomExcept(dest, fmt.Sprintf("%s arrives from the %s.", s.Character.Name, dir.Opposite()), s.CharId)
	h.bcast.ToSession(s.CharId, h.renderRoom(s))
	h.coord.OnSessionEnter(s, now)

	return nil
}

// enter steps through the room's portal, if it has one.
func (h *Handler) enter(ctx context.Context, s *game.Session, args []string) error {
	dest, ok := h.reg.Graph().PortalAt(s.Loc)
	if !ok {
		return NewUserError("There is no portal here.")
	}

	now := time.Now()
	derived := s.Derive(h.equippedWeapon(s), now)
	if remaining, ready := s.Gate().Ready(now, derived.Pace); !ready {
		return newUserErrorf("You are still recovering (%.1fs).", remaining.Seconds())
	}
	s.Gate().Consume(now)

	h.coord.Disengage(s)

	from := s.Loc
	h.bcast.ToRoomExcept(from, fmt.Sprintf("%s steps into the portal and vanishes.", s.Character.Name), s.CharId)

	err := h.reg.MoveSession(s, dest)
	if err != nil {
		return fmt.Errorf("moving session: %w", err)
	}

	h.bcast.ToRoomExcept(dest, fmt.Sprintf("%s steps out of a shimmering portal.", s.Character.Name), s.CharId)
	h.bcast.ToSession(s.CharId, h.renderRoom(s))
	h.coord.OnSessionEnter(s, now)

	return nil
}
