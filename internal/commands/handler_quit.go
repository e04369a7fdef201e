package commands

import (
	"context"
	"fmt"

	"github.com/pixil98/go-realm/internal/game"
)

// quit saves the character and flags the session for teardown. The
// player loop notices the flag and closes the connection.
func (h *Handler) quit(ctx context.Context, s *game.Session, args []string) error {
	h.coord.Disengage(s)

	err := h.saveCharacter(s)
	if err != nil {
		return fmt.Errorf("saving character on quit: %w", err)
	}

	h.bcast.ToRoomExcept(s.Loc, fmt.Sprintf("%s fades from the world.", s.Character.Name), s.CharId)
	s.Quit = true
	return nil
}
