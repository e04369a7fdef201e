package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pixil98/go-realm/internal/combat"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/spells"
)

// attack swings the equipped weapon at a named creature.
func (h *Handler) attack(ctx context.Context, s *game.Session, args []string) error {
	if len(args) == 0 {
		return NewUserError("Attack what?")
	}

	msg, err := h.coord.PlayerAttack(ctx, s, strings.Join(args, " "), time.Now())
	if err != nil {
		var actionErr *combat.ActionError
		if errors.As(err, &actionErr) {
			return NewUserError(actionErr.Message)
		}
		return err
	}

	h.bcast.ToSession(s.CharId, msg)
	return nil
}

// cast casts a known spell, optionally at a named target.
func (h *Handler) cast(ctx context.Context, s *game.Session, args []string) error {
	if len(args) == 0 {
		return NewUserError("Cast which spell?")
	}

	spellId := args[0]
	targetName := strings.Join(args[1:], " ")

	result, err := h.engine.Cast(ctx, s, spellId, targetName, time.Now())
	if err != nil {
		var castErr *spells.CastError
		if errors.As(err, &castErr) {
			return NewUserError(castErr.Message)
		}
		var actionErr *combat.ActionError
		if errors.As(err, &actionErr) {
			return NewUserError(actionErr.Message)
		}
		return err
	}

	h.bcast.ToSession(s.CharId, result.CasterMsg)
	if result.TargetId != "" {
		h.bcast.ToSession(result.TargetId, result.TargetMsg)
	}
	if result.RoomMsg != "" {
		h.bcast.ToRoomExcept(s.Loc, result.RoomMsg, s.CharId, result.TargetId)
	}

	return nil
}

// listSpells shows the participant's spellbook with cooldown state.
func (h *Handler) listSpells(ctx context.Context, s *game.Session, args []string) error {
	known := h.engine.Known(s)
	if len(known) == 0 {
		return NewUserError("You don't know any spells.")
	}

	ids := make([]string, 0, len(known))
	for id := range known {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := time.Now()
	var b strings.Builder
	b.WriteString("You know the following spells:")
	for _, id := range ids {
		sp := known[id]
		state := "ready"
		if remaining, ready := s.SpellReady(id, now); !ready {
			state = fmt.Sprintf("recharging, %.0fs", remaining.Seconds())
		}
		b.WriteString(fmt.Sprintf("\r\n  %s - %s (%s, %s)", id, sp.Name, sp.Kind(), state))
	}

	h.bcast.ToSession(s.CharId, b.String())
	return nil
}
