package combat

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-realm/internal/dice"
	"github.com/pixil98/go-realm/internal/game"
)

// AttackProfile is everything needed to resolve one swing or spell
// strike, already flattened from derived stats.
type AttackProfile struct {
	AttackBonus int
	BonusDice   []game.BonusDie

	// Damage is dice notation; DamageBonus is added after the roll.
	Damage      string
	DamageBonus int
	DamageType  string
}

// Outcome is a fully-resolved attack.
type Outcome struct {
	Natural int
	Total   int
	Hit     bool
	Crit    bool
	Damage  int

	// Detail is the roll breakdown for the attacker's line, e.g.
	// "14+5+3 (bless) = 22 vs AC 13".
	Detail string
}

// ResolveAttack applies the attack rules to a known d20 roll: a
// natural 1 always misses, a natural 20 always hits and doubles the
// damage dice (the flat bonus is not doubled). Damage on a hit is
// never less than 1.
func ResolveAttack(natural int, p AttackProfile, targetAC int) Outcome {
	o := Outcome{Natural: natural, Total: natural + p.AttackBonus}

	detail := []string{fmt.Sprintf("%d", natural)}
	if p.AttackBonus != 0 {
		detail = append(detail, fmt.Sprintf("%+d", p.AttackBonus))
	}
	for _, bd := range p.BonusDice {
		r := bd.Roll.Total()
		o.Total += r
		detail = append(detail, fmt.Sprintf("+%d (%s)", r, bd.Label))
	}

	switch {
	case natural == 1:
		o.Hit = false
	case natural == 20:
		o.Hit = true
		o.Crit = true
	default:
		o.Hit = o.Total >= targetAC
	}

	if o.Hit {
		roll, mod, ok := dice.ParseNotation(p.Damage)
		if !ok {
			mod = 1
		}
		o.Damage = roll.Total() + mod + p.DamageBonus
		if o.Crit {
			o.Damage += roll.Total()
		}
		if o.Damage < 1 {
			o.Damage = 1
		}
	}

	o.Detail = fmt.Sprintf("%s = %d vs AC %d", strings.Join(detail, ""), o.Total, targetAC)
	return o
}

// RollAttack rolls the d20 and resolves.
func RollAttack(p AttackProfile, targetAC int) Outcome {
	return ResolveAttack(dice.D20(), p, targetAC)
}
