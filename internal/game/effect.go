package game

import (
	"time"

	"github.com/pixil98/go-realm/internal/dice"
)

// BonusDie is an extra labeled die added to attack rolls by an effect,
// e.g. Bless adds "1d4 (bless)".
type BonusDie struct {
	Label string    `json:"label"`
	Roll  dice.Roll `json:"roll"`
}

// Modifiers is what an effect changes while it is active. Zero-valued
// fields modify nothing.
type Modifiers struct {
	// Abilities holds deltas to ability scores, keyed "str".."cha".
	Abilities map[string]int `json:"abilities,omitempty"`

	AC          int `json:"ac,omitempty"`
	AttackBonus int `json:"attack_bonus,omitempty"`
	DamageBonus int `json:"damage_bonus,omitempty"`

	// AttackDice are bonus dice rolled and added to every attack roll.
	AttackDice []BonusDie `json:"attack_dice,omitempty"`
}

// Effect is a temporary modifier attached to a participant or creature.
type Effect struct {
	// Key identifies the effect for replacement: reapplying a
	// non-stackable effect with the same key replaces the older copy
	// rather than adding a second one.
	Key  string `json:"key"`
	Name string `json:"name"`

	Stackable bool `json:"stackable,omitempty"`

	// ExpiresAt is when the effect lapses. The zero time means the
	// effect lasts until explicitly cleared.
	ExpiresAt time.Time `json:"expires_at,omitempty"`

	Mods Modifiers `json:"mods"`
}

// Expired reports whether the effect has lapsed at the given time.
func (e *Effect) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// UpsertEffect adds an effect to the list. Non-stackable effects
// replace any existing effect with the same key; stackable effects
// always append.
func UpsertEffect(effects []Effect, e Effect) []Effect {
	if !e.Stackable {
		for i := range effects {
			if effects[i].Key == e.Key {
				effects[i] = e
				return effects
			}
		}
	}
	return append(effects, e)
}

// PruneEffects drops expired effects, preserving order.
func PruneEffects(effects []Effect, now time.Time) []Effect {
	kept := effects[:0]
	for _, e := range effects {
		if !e.Expired(now) {
			kept = append(kept, e)
		}
	}
	return kept
}
