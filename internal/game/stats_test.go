package game

import (
	"testing"
	"time"

	"github.com/pixil98/go-realm/internal/dice"
	"github.com/pixil98/go-testutil"
)

func TestAbilityMod(t *testing.T) {
	tests := map[int]int{
		1:  -5,
		7:  -2,
		8:  -1,
		9:  -1,
		10: 0,
		11: 0,
		12: 1,
		15: 2,
		18: 4,
		20: 5,
	}

	for score, exp := range tests {
		testutil.AssertEqual(t, "modifier", AbilityMod(score), exp)
	}
}

func baseAbilities() map[string]int {
	return map[string]int{"str": 16, "dex": 14, "con": 12, "int": 10, "wis": 10, "cha": 8}
}

func TestDerive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sword := &Weapon{Name: "longsword", Damage: "1d8", Ability: "str"}

	tests := map[string]struct {
		weapon  *Weapon
		effects []Effect
		expAC   int
		expAtk  int
		expDmg  int
		expInit int
		expDice int
	}{
		"bare sheet": {
			weapon: sword,
			// AC 14 base + 2 dex, attack 2 prof + 3 str.
			expAC:   16,
			expAtk:  5,
			expDmg:  3,
			expInit: 12,
		},
		"unarmed fallback": {
			weapon:  nil,
			expAC:   16,
			expAtk:  5,
			expDmg:  3,
			expInit: 12,
		},
		"shield of faith raises ac": {
			weapon: sword,
			effects: []Effect{{
				Key:       "shield-of-faith",
				ExpiresAt: now.Add(time.Minute),
				Mods:      Modifiers{AC: 2},
			}},
			expAC:   18,
			expAtk:  5,
			expDmg:  3,
			expInit: 12,
		},
		"bless adds attack dice": {
			weapon: sword,
			effects: []Effect{{
				Key:       "bless",
				ExpiresAt: now.Add(time.Minute),
				Mods:      Modifiers{AttackDice: []BonusDie{{Label: "bless", Roll: dice.Roll{Count: 1, Sides: 4}}}},
			}},
			expAC:   16,
			expAtk:  5,
			expDmg:  3,
			expInit: 12,
			expDice: 1,
		},
		"ability delta shifts everything downstream": {
			weapon: sword,
			effects: []Effect{{
				Key:       "cats-grace",
				ExpiresAt: now.Add(time.Minute),
				Mods:      Modifiers{Abilities: map[string]int{"dex": 4}},
			}},
			// dex 18: AC and initiative rise, str attack unchanged.
			expAC:   18,
			expAtk:  5,
			expDmg:  3,
			expInit: 14,
		},
		"expired effect ignored": {
			weapon: sword,
			effects: []Effect{{
				Key:       "shield-of-faith",
				ExpiresAt: now.Add(-time.Second),
				Mods:      Modifiers{AC: 2},
			}},
			expAC:   16,
			expAtk:  5,
			expDmg:  3,
			expInit: 12,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d := Derive(baseAbilities(), 14, 2, tt.weapon, tt.effects, now)

			testutil.AssertEqual(t, "ac", d.AC, tt.expAC)
			testutil.AssertEqual(t, "attack bonus", d.AttackBonus, tt.expAtk)
			testutil.AssertEqual(t, "damage bonus", d.DamageBonus, tt.expDmg)
			testutil.AssertEqual(t, "initiative", d.Initiative, tt.expInit)
			testutil.AssertEqual(t, "attack dice", len(d.AttackDice), tt.expDice)
		})
	}
}

func TestDerive_IsPure(t *testing.T) {
	now := time.Now()
	abilities := baseAbilities()
	effects := []Effect{{Key: "bless", Mods: Modifiers{AttackBonus: 1}}}

	first := Derive(abilities, 14, 2, nil, effects, now)
	second := Derive(abilities, 14, 2, nil, effects, now)

	testutil.AssertEqual(t, "ac stable", second.AC, first.AC)
	testutil.AssertEqual(t, "attack stable", second.AttackBonus, first.AttackBonus)
	testutil.AssertEqual(t, "base unchanged", abilities["str"], 16)
}

func TestPaceFor(t *testing.T) {
	tests := map[string]struct {
		initiative int
		expPace    float64
	}{
		"baseline":      {initiative: 10, expPace: 1.0},
		"quick":         {initiative: 15, expPace: 1.25},
		"slow":          {initiative: 5, expPace: 0.75},
		"clamped high":  {initiative: 30, expPace: 1.25},
		"clamped low":   {initiative: 0, expPace: 0.75},
		"partial bonus": {initiative: 12, expPace: 1.1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := paceFor(tt.initiative)
			if diff := got - tt.expPace; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("pace for %d = %v, want %v", tt.initiative, got, tt.expPace)
			}
		})
	}
}

func TestUpsertEffect(t *testing.T) {
	now := time.Now()

	bless := Effect{Key: "bless", Name: "Bless", ExpiresAt: now.Add(time.Minute)}
	poison := Effect{Key: "poison", Name: "Poison", Stackable: true}

	effects := UpsertEffect(nil, bless)
	effects = UpsertEffect(effects, poison)
	effects = UpsertEffect(effects, poison)
	testutil.AssertEqual(t, "stackable duplicates", len(effects), 3)

	// Reapplying a non-stackable effect replaces it in place.
	refreshed := bless
	refreshed.ExpiresAt = now.Add(time.Hour)
	effects = UpsertEffect(effects, refreshed)
	testutil.AssertEqual(t, "replaced not appended", len(effects), 3)
	testutil.AssertEqual(t, "newer expiry kept", effects[0].ExpiresAt, now.Add(time.Hour))
}

func TestPruneEffects(t *testing.T) {
	now := time.Now()
	effects := []Effect{
		{Key: "bless", ExpiresAt: now.Add(time.Minute)},
		{Key: "shield-of-faith", ExpiresAt: now.Add(-time.Second)},
		{Key: "permanent"},
	}

	kept := PruneEffects(effects, now)
	testutil.AssertEqual(t, "kept count", len(kept), 2)
	testutil.AssertEqual(t, "first kept", kept[0].Key, "bless")
	testutil.AssertEqual(t, "permanent kept", kept[1].Key, "permanent")
}
