package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pixil98/go-realm/internal/dice"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/loot"
)

// search attempts the room's hidden-cache check. Each participant gets
// one attempt per room, and the cache itself can only ever be recovered
// once, no matter who finds it.
func (h *Handler) search(ctx context.Context, s *game.Session, args []string) error {
	room := h.reg.Graph().RoomAt(s.Loc)
	if room.Search == nil {
		return NewUserError("You find nothing out of the ordinary.")
	}

	if s.HasSearched(s.Loc) {
		return NewUserError("You have already searched here.")
	}

	now := time.Now()
	derived := s.Derive(h.equippedWeapon(s), now)
	if remaining, ready := s.Gate().Ready(now, derived.Pace); !ready {
		return newUserErrorf("You are still recovering (%.1fs).", remaining.Seconds())
	}
	s.Gate().Consume(now)
	s.MarkSearched(s.Loc)

	h.bcast.ToRoomExcept(s.Loc, fmt.Sprintf("%s searches the area.", s.Character.Name), s.CharId)

	check := room.Search
	roll := dice.D20() + derived.Mod(check.Ability)
	if roll < check.Difficulty {
		text := check.FailureText
		if text == "" {
			text = "You search carefully but find nothing."
		}
		h.bcast.ToSession(s.CharId, text)
		return nil
	}

	if !h.reg.TryHarvest(s.Loc) {
		h.bcast.ToSession(s.CharId, "You find where something was hidden, but it has already been recovered.")
		return nil
	}

	var entries []loot.Entry
	if gold := loot.RollGold(check.GoldMin, check.GoldMax); gold > 0 {
		entries = append(entries, loot.NewGoldEntry(gold))
	}
	entries = append(entries, loot.RollDrops(check.Drops, h.resolveItem)...)

	text := check.SuccessText
	if text == "" {
		text = "Your search turns something up!"
	}

	if len(entries) == 0 {
		h.bcast.ToSession(s.CharId, text)
		return nil
	}

	h.reg.AddDrops(s.Loc, entries...)

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	h.bcast.ToSession(s.CharId, fmt.Sprintf("%s You uncover: %s.", text, strings.Join(names, ", ")))
	h.bcast.ToRoomExcept(s.Loc, fmt.Sprintf("%s uncovers something hidden!", s.Character.Name), s.CharId)

	return nil
}
