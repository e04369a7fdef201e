package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pixil98/go-realm/internal/game"
)

// score shows the character sheet with fully-derived stats, so what
// the participant reads is exactly what every roll uses.
func (h *Handler) score(ctx context.Context, s *game.Session, args []string) error {
	now := time.Now()
	char := s.Character
	derived := s.Derive(h.equippedWeapon(s), now)
	spec := game.Classes[char.Class]

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s, level %d %s", char.Name, char.Level, spec.Name))
	b.WriteString(fmt.Sprintf("\r\nHP: %d/%d   XP: %d   Gold: %d", char.HP, char.MaxHP, char.XP, char.Gold))

	var scores []string
	for _, name := range game.AbilityNames {
		scores = append(scores, fmt.Sprintf("%s %d (%+d)", name, derived.Abilities[name], derived.Mod(name)))
	}
	b.WriteString("\r\n" + strings.Join(scores, "  "))

	b.WriteString(fmt.Sprintf("\r\nAC: %d   Attack: %+d   Damage: %+d   Initiative: %d   Pace: %.2f",
		derived.AC, derived.AttackBonus, derived.DamageBonus, derived.Initiative, derived.Pace))

	effects := s.Effects(now)
	if len(effects) > 0 {
		b.WriteString("\r\nActive effects:")
		for _, e := range effects {
			if e.ExpiresAt.IsZero() {
				b.WriteString(fmt.Sprintf("\r\n  %s", e.Name))
				continue
			}
			b.WriteString(fmt.Sprintf("\r\n  %s (%.0fs)", e.Name, e.ExpiresAt.Sub(now).Seconds()))
		}
	}

	h.bcast.ToSession(s.CharId, b.String())
	return nil
}
