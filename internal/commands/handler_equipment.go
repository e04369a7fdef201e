package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-realm/internal/game"
)

// equip wields a weapon from the inventory, swapping out whatever was
// held before.
func (h *Handler) equip(ctx context.Context, s *game.Session, args []string) error {
	if len(args) == 0 {
		return NewUserError("Equip what?")
	}
	name := strings.Join(args, " ")

	idx := -1
	for i, key := range s.Character.Inventory {
		w := h.weapons.Get(key)
		if w == nil {
			continue
		}
		if strings.EqualFold(key, name) || strings.EqualFold(w.Name, name) {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Distinguish "not carried" from "not wieldable".
		for _, key := range s.Character.Inventory {
			itemName, _ := h.resolveItem(key)
			if strings.EqualFold(key, name) || strings.EqualFold(itemName, name) {
				return newUserErrorf("You can't wield the %s.", itemName)
			}
		}
		return newUserErrorf("You aren't carrying %s.", name)
	}

	key := s.Character.Inventory[idx]
	s.Character.Inventory = append(s.Character.Inventory[:idx], s.Character.Inventory[idx+1:]...)
	if s.Character.Weapon != "" {
		s.Character.Inventory = append(s.Character.Inventory, s.Character.Weapon)
	}
	s.Character.Weapon = key

	weapon := h.weapons.Get(key)
	h.bcast.ToSession(s.CharId, fmt.Sprintf("You wield the %s.", weapon.Name))
	h.bcast.ToRoomExcept(s.Loc, fmt.Sprintf("%s wields a %s.", s.Character.Name, weapon.Name), s.CharId)

	return h.saveCharacter(s)
}

// inventory lists gold, the equipped weapon, and carried items.
func (h *Handler) inventory(ctx context.Context, s *game.Session, args []string) error {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("You are carrying %d gold.", s.Character.Gold))

	if w := h.equippedWeapon(s); w != nil {
		b.WriteString(fmt.Sprintf("\r\nWielding: %s (%s)", w.Name, w.Damage))
	} else {
		b.WriteString("\r\nWielding: nothing but your fists")
	}

	if len(s.Character.Inventory) == 0 {
		b.WriteString("\r\nYour pack is empty.")
	} else {
		for _, key := range s.Character.Inventory {
			name, _ := h.resolveItem(key)
			b.WriteString(fmt.Sprintf("\r\n  %s", name))
		}
	}

	h.bcast.ToSession(s.CharId, b.String())
	return nil
}
