package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-realm/internal/game"
)

// say speaks to everyone in the room.
func (h *Handler) say(ctx context.Context, s *game.Session, args []string) error {
	if len(args) == 0 {
		return NewUserError("Say what?")
	}
	line := strings.Join(args, " ")

	h.bcast.ToSession(s.CharId, fmt.Sprintf("You say, \"%s\"", line))
	h.bcast.ToRoomExcept(s.Loc, fmt.Sprintf("%s says, \"%s\"", s.Character.Name, line), s.CharId)
	return nil
}

// talk addresses a persona-bearing NPC: "talk innkeeper heard any rumors?"
func (h *Handler) talk(ctx context.Context, s *game.Session, args []string) error {
	if len(args) < 2 {
		return NewUserError("Talk to whom, about what? Try: talk innkeeper hello")
	}

	npc := h.coord.FindCreature(s.Loc, args[0])
	if npc == nil {
		return newUserErrorf("You don't see %s here.", args[0])
	}
	if !npc.Talkative() {
		return newUserErrorf("The %s doesn't seem interested in conversation.", npc.Name())
	}

	line := strings.Join(args[1:], " ")
	h.bcast.ToRoomExcept(s.Loc, fmt.Sprintf("%s murmurs with the %s.", s.Character.Name, npc.Name()), s.CharId)

	exchange, err := h.talker.Talk(ctx, s, npc, line)
	if err != nil {
		return fmt.Errorf("talking to %s: %w", npc.TemplateId, err)
	}

	h.bcast.ToSession(s.CharId, fmt.Sprintf("You say to the %s, \"%s\"\r\nThe %s says, \"%s\"",
		npc.Name(), line, npc.Name(), exchange.Reply))
	return nil
}
