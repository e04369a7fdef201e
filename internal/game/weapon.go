package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Weapon is a loadable weapon template.
type Weapon struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Damage is dice notation, e.g. "1d8" or "2d6-1".
	Damage string `json:"damage"`

	// Ability whose modifier applies to attack and damage rolls
	// ("str" or "dex").
	Ability string `json:"ability"`

	// DamageType is flavor for combat narration ("slashing", "piercing").
	DamageType string `json:"damage_type"`
}

// Validate satisfies storage.ValidatingSpec.
func (w *Weapon) Validate() error {
	el := errors.NewErrorList()

	if w.Name == "" {
		el.Add(fmt.Errorf("weapon name is required"))
	}
	if w.Damage == "" {
		el.Add(fmt.Errorf("weapon damage is required"))
	}
	switch w.Ability {
	case "str", "dex":
	default:
		el.Add(fmt.Errorf("weapon ability must be str or dex, got %q", w.Ability))
	}

	return el.Err()
}

// Unarmed is the fallback weapon when a combatant has nothing equipped.
var Unarmed = &Weapon{
	Name:       "bare fists",
	Damage:     "1",
	Ability:    "str",
	DamageType: "bludgeoning",
}

// Item is a loadable non-weapon item template. Items are flavor and
// trade goods; they have no mechanical effect.
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Value is the item's worth in gold when sold or appraised.
	Value int `json:"value,omitempty"`
}

func (i *Item) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("item name is required")
	}
	return nil
}
