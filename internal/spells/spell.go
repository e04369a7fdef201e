package spells

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/game"
)

// Target says who a spell may be aimed at.
type Target string

const (
	// TargetNone takes no target at all (area and utility spells).
	TargetNone Target = "none"

	// TargetSelf only ever affects the caster.
	TargetSelf Target = "self"

	// TargetAlly affects a co-located participant, defaulting to the
	// caster when no name is given.
	TargetAlly Target = "ally"

	// TargetEnemy requires a distinct, co-located creature.
	TargetEnemy Target = "enemy"
)

// AttackSpec is the payload of an offensive spell.
type AttackSpec struct {
	// Damage is dice notation, e.g. "1d10".
	Damage string `json:"damage"`

	// Bonus is a flat addition to the damage roll.
	Bonus int `json:"bonus,omitempty"`

	// AddAbility folds the casting ability's modifier into damage.
	AddAbility bool `json:"add_ability,omitempty"`

	DamageType string `json:"damage_type,omitempty"`
}

// HealSpec is the payload of a restorative spell.
type HealSpec struct {
	// Dice is notation for the amount restored.
	Dice string `json:"dice"`

	// Bonus is a flat addition to the roll.
	Bonus int `json:"bonus,omitempty"`

	// AddAbility names an ability whose modifier is added to the roll.
	AddAbility string `json:"add_ability,omitempty"`

	// AddLevel adds the caster's level, for heals that scale.
	AddLevel bool `json:"add_level,omitempty"`
}

// BuffSpec is the payload of a spell that attaches an effect.
type BuffSpec struct {
	// Key for effect replacement; defaults to the spell id.
	Key string `json:"key,omitempty"`

	// Duration in seconds. Zero means until cleared.
	Duration  int  `json:"duration,omitempty"`
	Stackable bool `json:"stackable,omitempty"`

	Mods game.Modifiers `json:"mods"`
}

// UtilitySpec is the payload of a non-combat spell.
type UtilitySpec struct {
	// Kind selects the behavior. "survey" reports creatures in
	// adjacent rooms.
	Kind string `json:"kind"`
}

// Spell is a loadable spell definition. Exactly one payload field is
// set; which one decides what casting does.
type Spell struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	Target Target `json:"target"`

	// Ability is the casting ability ("int", "wis", ...). Its modifier
	// drives attack rolls and any AddAbility heals.
	Ability string `json:"ability"`

	// Cooldown in seconds before this spell can be cast again,
	// independent of the action gate.
	Cooldown int `json:"cooldown"`

	Attack  *AttackSpec  `json:"attack,omitempty"`
	Heal    *HealSpec    `json:"heal,omitempty"`
	Buff    *BuffSpec    `json:"buff,omitempty"`
	Utility *UtilitySpec `json:"utility,omitempty"`
}

// Kind names the payload variant, for logs and narration.
func (s *Spell) Kind() string {
	switch {
	case s.Attack != nil:
		return "attack"
	case s.Heal != nil:
		return "heal"
	case s.Buff != nil:
		return "buff"
	case s.Utility != nil:
		return "utility"
	}
	return "unknown"
}

// CooldownDuration returns the spell's private cooldown.
func (s *Spell) CooldownDuration() time.Duration {
	return time.Duration(s.Cooldown) * time.Second
}

// Validate satisfies storage.ValidatingSpec. Beyond field checks it
// enforces payload/target compatibility, so a malformed definition is
// rejected at load rather than at cast.
func (s *Spell) Validate() error {
	el := errors.NewErrorList()

	if s.Name == "" {
		el.Add(fmt.Errorf("spell name is required"))
	}
	if s.Cooldown < 0 {
		el.Add(fmt.Errorf("spell cooldown cannot be negative"))
	}

	set := 0
	for _, present := range []bool{s.Attack != nil, s.Heal != nil, s.Buff != nil, s.Utility != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		el.Add(fmt.Errorf("spell must have exactly one payload, got %d", set))
		return el.Err()
	}

	switch {
	case s.Attack != nil:
		if s.Target != TargetEnemy {
			el.Add(fmt.Errorf("attack spells must target an enemy"))
		}
		if s.Attack.Damage == "" {
			el.Add(fmt.Errorf("attack damage is required"))
		}
		if s.Ability == "" {
			el.Add(fmt.Errorf("attack spells need a casting ability"))
		}
	case s.Heal != nil:
		if s.Target != TargetSelf && s.Target != TargetAlly {
			el.Add(fmt.Errorf("heal spells must target self or an ally"))
		}
		if s.Heal.Dice == "" {
			el.Add(fmt.Errorf("heal dice is required"))
		}
	case s.Buff != nil:
		if s.Target != TargetSelf && s.Target != TargetAlly {
			el.Add(fmt.Errorf("buff spells must target self or an ally"))
		}
		if s.Buff.Duration < 0 {
			el.Add(fmt.Errorf("buff duration cannot be negative"))
		}
	case s.Utility != nil:
		if s.Target != TargetNone {
			el.Add(fmt.Errorf("utility spells take no target"))
		}
		if s.Utility.Kind != "survey" {
			el.Add(fmt.Errorf("unknown utility kind %q", s.Utility.Kind))
		}
	}

	return el.Err()
}

// BuffEffect builds the effect a buff spell attaches, stamped with its
// expiry.
func (s *Spell) BuffEffect(id string, now time.Time) game.Effect {
	key := s.Buff.Key
	if key == "" {
		key = id
	}

	e := game.Effect{
		Key:       key,
		Name:      s.Name,
		Stackable: s.Buff.Stackable,
		Mods:      s.Buff.Mods,
	}
	if s.Buff.Duration > 0 {
		e.ExpiresAt = now.Add(time.Duration(s.Buff.Duration) * time.Second)
	}
	return e
}
