package game

import "time"

// AbilityMod converts an ability score to its modifier: floor of
// (score - 10) / 2, so 8 gives -1 and 15 gives +2.
func AbilityMod(score int) int {
	v := score - 10
	if v < 0 {
		// Integer division truncates toward zero; odd negatives need
		// one more step down to floor.
		return -((-v + 1) / 2)
	}
	return v / 2
}

// Derived is the fully-resolved stat block used for every roll. It is
// recomputed from scratch on each read so effect expiry never needs a
// background sweep.
type Derived struct {
	// Abilities holds effective scores after effect deltas.
	Abilities map[string]int

	AC          int
	AttackBonus int
	DamageBonus int

	// AttackDice are bonus dice added to attack rolls by effects.
	AttackDice []BonusDie

	// Initiative drives the action pace: 10 plus the effective
	// dexterity modifier.
	Initiative int

	// Pace scales action cooldowns. Above 1.0 means faster actions.
	Pace float64
}

// Mod returns the modifier for an effective ability score.
func (d Derived) Mod(ability string) int {
	return AbilityMod(d.Abilities[ability])
}

// Derive computes the effective stat block for a combatant from base
// scores, the equipped weapon, and the active effects. Expired effects
// are ignored; callers prune them separately. The function is pure:
// same inputs, same output, no mutation.
func Derive(abilities map[string]int, baseAC, proficiency int, weapon *Weapon, effects []Effect, now time.Time) Derived {
	if weapon == nil {
		weapon = Unarmed
	}

	effective := make(map[string]int, len(AbilityNames))
	for _, name := range AbilityNames {
		effective[name] = abilities[name]
	}

	acBonus := 0
	attackBonus := 0
	damageBonus := 0
	var attackDice []BonusDie
	for i := range effects {
		e := &effects[i]
		if e.Expired(now) {
			continue
		}
		for name, delta := range e.Mods.Abilities {
			effective[name] += delta
		}
		acBonus += e.Mods.AC
		attackBonus += e.Mods.AttackBonus
		damageBonus += e.Mods.DamageBonus
		attackDice = append(attackDice, e.Mods.AttackDice...)
	}

	d := Derived{
		Abilities:  effective,
		AttackDice: attackDice,
	}

	d.AC = baseAC + d.Mod("dex") + acBonus
	d.AttackBonus = proficiency + d.Mod(weapon.Ability) + attackBonus
	d.DamageBonus = d.Mod(weapon.Ability) + damageBonus
	d.Initiative = 10 + d.Mod("dex")
	d.Pace = paceFor(d.Initiative)

	return d
}

// paceFor maps initiative to a cooldown multiplier: every 5 points of
// initiative above or below 10 shifts pace by 25%, clamped to
// [0.75, 1.25].
func paceFor(initiative int) float64 {
	pace := 1.0 + float64(initiative-10)/5.0*0.25
	if pace < 0.75 {
		pace = 0.75
	}
	if pace > 1.25 {
		pace = 1.25
	}
	return pace
}

// DeriveCharacter resolves a character's stat block.
func DeriveCharacter(c *Character, weapon *Weapon, effects []Effect, now time.Time) Derived {
	return Derive(c.Abilities, c.BaseAC, c.Proficiency(), weapon, effects, now)
}
