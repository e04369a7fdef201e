package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/loot"
)

// get picks up drops from the room floor. With no argument (or "all")
// it takes everything; otherwise it takes the first entry matching the
// name. Claims are race-safe: two participants grabbing the same entry
// resolve to one winner.
func (h *Handler) get(ctx context.Context, s *game.Session, args []string) error {
	drops := h.reg.DropsAt(s.Loc)
	if len(drops) == 0 {
		return NewUserError("There is nothing here to pick up.")
	}

	name := strings.Join(args, " ")
	var claimed []loot.Entry

	if name == "" || strings.EqualFold(name, "all") {
		claimed = h.reg.TakeAllDrops(s.Loc)
	} else {
		entry, ok := h.findDrop(drops, name)
		if !ok {
			return newUserErrorf("You don't see %s here.", name)
		}
		taken, ok := h.reg.TakeDrop(s.Loc, entry.ID)
		if !ok {
			return newUserErrorf("Someone else got the %s first.", entry.Name)
		}
		claimed = []loot.Entry{taken}
	}

	if len(claimed) == 0 {
		return NewUserError("There is nothing here to pick up.")
	}

	var lines []string
	for _, entry := range claimed {
		switch entry.Kind {
		case loot.KindGold:
			s.Character.Gold += entry.Amount
			lines = append(lines, fmt.Sprintf("You pick up %d gold.", entry.Amount))
		default:
			s.Character.Inventory = append(s.Character.Inventory, entry.ItemKey)
			lines = append(lines, fmt.Sprintf("You pick up the %s.", entry.Name))
		}
	}

	h.bcast.ToSession(s.CharId, strings.Join(lines, "\r\n"))
	h.bcast.ToRoomExcept(s.Loc, fmt.Sprintf("%s picks something up.", s.Character.Name), s.CharId)

	return h.saveCharacter(s)
}

// findDrop matches a drop by display name, item key, or any word of
// its name.
func (h *Handler) findDrop(drops []loot.Entry, name string) (loot.Entry, bool) {
	for _, entry := range drops {
		if strings.EqualFold(entry.Name, name) || strings.EqualFold(entry.ItemKey, name) {
			return entry, true
		}
		for _, word := range strings.Fields(entry.Name) {
			if strings.EqualFold(word, name) {
				return entry, true
			}
		}
	}
	return loot.Entry{}, false
}

func (h *Handler) saveCharacter(s *game.Session) error {
	err := s.SaveCharacter(h.chars)
	if err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	return nil
}
