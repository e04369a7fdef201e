package spells

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
	"github.com/pixil98/go-testutil"
)

type fakeStore struct {
	spells map[string]*Spell
}

func (f *fakeStore) Save(string, *Spell) error { return nil }
func (f *fakeStore) Get(id string) *Spell      { return f.spells[id] }
func (f *fakeStore) GetAll() map[string]*Spell { return f.spells }

type fakeSubscriber struct{}

func (fakeSubscriber) Subscribe(string, func([]byte)) (func(), error) {
	return func() {}, nil
}

type fakeCombat struct {
	creatures map[string][]string
	strikes   int
}

func (f *fakeCombat) HasCreature(loc world.Location, name string) bool {
	for _, n := range f.creatures[loc.String()] {
		if n == name {
			return true
		}
	}
	return false
}

func (f *fakeCombat) SpellStrike(_ context.Context, caster *game.Session, creatureName, spellId string, sp *Spell) (string, error) {
	f.strikes++
	return fmt.Sprintf("Your %s sears %s!", sp.Name, creatureName), nil
}

func (f *fakeCombat) CreatureNamesAt(loc world.Location) []string {
	return f.creatures[loc.String()]
}

func testSpells() map[string]*Spell {
	return map[string]*Spell{
		"fire-bolt": {
			Name: "Fire Bolt", Target: TargetEnemy, Ability: "int", Cooldown: 6,
			Attack: &AttackSpec{Damage: "1d10", DamageType: "fire"},
		},
		"cure-wounds": {
			Name: "Cure Wounds", Target: TargetAlly, Ability: "wis", Cooldown: 10,
			Heal: &HealSpec{Dice: "1d8", AddAbility: "wis"},
		},
		"bless": {
			Name: "Bless", Target: TargetSelf, Ability: "wis", Cooldown: 30,
			Buff: &BuffSpec{Duration: 60, Mods: game.Modifiers{AttackBonus: 1}},
		},
		"detect-life": {
			Name: "Detect Life", Target: TargetNone, Ability: "wis", Cooldown: 15,
			Utility: &UtilitySpec{Kind: "survey"},
		},
		"second-wind": {
			Name: "Second Wind", Target: TargetSelf, Ability: "con", Cooldown: 60,
			Heal: &HealSpec{Dice: "1", Bonus: 2, AddLevel: true},
		},
	}
}

func testEngine(t *testing.T) (*Engine, *game.Registry, *fakeCombat) {
	t.Helper()

	rows := make([][]world.Room, 2)
	for y := range rows {
		rows[y] = make([]world.Room, 2)
		for x := range rows[y] {
			rows[y][x] = world.Room{Name: "Room"}
		}
	}
	graph, err := world.NewGraph(map[string]*world.Zone{
		"keep": {Name: "The Keep", Width: 2, Height: 2, Rows: rows},
	}, nil)
	if err != nil {
		t.Fatalf("building graph: %v", err)
	}

	reg := game.NewRegistry(fakeSubscriber{}, graph, 4*time.Second)
	combat := &fakeCombat{creatures: map[string][]string{}}
	return NewEngine(&fakeStore{spells: testSpells()}, reg, combat), reg, combat
}

func addSessionWithSpells(t *testing.T, reg *game.Registry, name string, spells []string) *game.Session {
	t.Helper()

	char := game.NewCharacter(name, "hash", "cleric",
		map[string]int{"str": 10, "dex": 10, "con": 12, "int": 14, "wis": 16, "cha": 10},
		world.Location{Zone: "keep", X: 0, Y: 0})
	char.KnownSpells = spells

	s, err := reg.AddSession(storage.Identifier(strings.ToLower(name)), char, make(chan []byte, 4), char.Home)
	if err != nil {
		t.Fatalf("adding session: %v", err)
	}
	return s
}

func TestEngine_Cast_Rejections(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		spells []string
		spell  string
		target string
		setup  func(s *game.Session, c *fakeCombat)
		expMsg string
	}{
		"unknown spell": {
			spells: []string{"bless"},
			spell:  "meteor",
			expMsg: "You don't know any spell called 'meteor'.",
		},
		"spell not on character list": {
			spells: []string{"bless"},
			spell:  "fire-bolt",
			target: "rat",
			expMsg: "You don't know any spell called 'fire-bolt'.",
		},
		"enemy spell with no target": {
			spells: []string{"fire-bolt"},
			spell:  "fire-bolt",
			expMsg: "Fire Bolt needs a target.",
		},
		"enemy spell target absent": {
			spells: []string{"fire-bolt"},
			spell:  "fire-bolt",
			target: "dragon",
			expMsg: "You don't see dragon here.",
		},
		"ally spell target absent": {
			spells: []string{"cure-wounds"},
			spell:  "cure-wounds",
			target: "Brom",
			expMsg: "You don't see Brom here.",
		},
		"no-target spell with a target": {
			spells: []string{"detect-life"},
			spell:  "detect-life",
			target: "rat",
			expMsg: "Detect Life doesn't take a target.",
		},
		"self spell aimed elsewhere": {
			spells: []string{"bless"},
			spell:  "bless",
			target: "Brom",
			expMsg: "Bless can only be cast on yourself.",
		},
		"spell on cooldown": {
			spells: []string{"bless"},
			spell:  "bless",
			setup: func(s *game.Session, _ *fakeCombat) {
				s.StartSpellCooldown("bless", now, 30*time.Second)
			},
			expMsg: "Bless is still recharging (30.0s).",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			engine, reg, combat := testEngine(t)
			caster := addSessionWithSpells(t, reg, "Ayla", tt.spells)
			if tt.setup != nil {
				tt.setup(caster, combat)
			}

			_, err := engine.Cast(t.Context(), caster, tt.spell, tt.target, now)
			var castErr *CastError
			if !errors.As(err, &castErr) {
				t.Fatalf("expected CastError, got %v", err)
			}
			testutil.AssertEqual(t, "message", castErr.Message, tt.expMsg)

			// A rejected cast consumes nothing.
			_, ready := caster.Gate().Ready(now, 1.0)
			testutil.AssertEqual(t, "gate untouched", ready, true)
		})
	}
}

func TestEngine_Cast_HealSelf(t *testing.T) {
	now := time.Now()
	engine, reg, _ := testEngine(t)
	caster := addSessionWithSpells(t, reg, "Ayla", []string{"cure-wounds"})

	caster.ApplyDamage(5)
	hurt := caster.Character.HP

	result, err := engine.Cast(t.Context(), caster, "cure-wounds", "", now)
	if err != nil {
		t.Fatalf("casting: %v", err)
	}

	if caster.Character.HP <= hurt {
		t.Errorf("expected healing, hp went %d -> %d", hurt, caster.Character.HP)
	}
	if result.CasterMsg == "" || result.RoomMsg == "" {
		t.Error("expected caster and room messages")
	}
	testutil.AssertEqual(t, "no separate target", result.TargetId.String(), "")

	// Success consumes both the action gate and the spell cooldown.
	_, ready := caster.Gate().Ready(now, 1.0)
	testutil.AssertEqual(t, "gate consumed", ready, false)
	_, ready = caster.SpellReady("cure-wounds", now)
	testutil.AssertEqual(t, "cooldown started", ready, false)
}

func TestEngine_Cast_HealAlly(t *testing.T) {
	now := time.Now()
	engine, reg, _ := testEngine(t)
	caster := addSessionWithSpells(t, reg, "Ayla", []string{"cure-wounds"})
	ally := addSessionWithSpells(t, reg, "Brom", nil)

	ally.ApplyDamage(4)
	hurt := ally.Character.HP

	result, err := engine.Cast(t.Context(), caster, "cure-wounds", "Brom", now)
	if err != nil {
		t.Fatalf("casting: %v", err)
	}

	if ally.Character.HP <= hurt {
		t.Errorf("expected ally healed, hp went %d -> %d", hurt, ally.Character.HP)
	}
	testutil.AssertEqual(t, "target id", result.TargetId, ally.CharId)
	if result.TargetMsg == "" {
		t.Error("expected a message for the ally")
	}
}

func TestEngine_Cast_BuffAppliesEffect(t *testing.T) {
	now := time.Now()
	engine, reg, _ := testEngine(t)
	caster := addSessionWithSpells(t, reg, "Ayla", []string{"bless"})

	_, err := engine.Cast(t.Context(), caster, "bless", "", now)
	if err != nil {
		t.Fatalf("casting: %v", err)
	}

	effects := caster.Effects(now)
	testutil.AssertEqual(t, "effect count", len(effects), 1)
	testutil.AssertEqual(t, "effect key", effects[0].Key, "bless")
	testutil.AssertEqual(t, "expiry", effects[0].ExpiresAt, now.Add(60*time.Second))
	testutil.AssertEqual(t, "attack bonus", effects[0].Mods.AttackBonus, 1)
}

func TestEngine_Cast_AttackDelegatesToCombat(t *testing.T) {
	now := time.Now()
	engine, reg, combat := testEngine(t)
	caster := addSessionWithSpells(t, reg, "Ayla", []string{"fire-bolt"})
	combat.creatures[caster.Loc.String()] = []string{"rat"}

	result, err := engine.Cast(t.Context(), caster, "fire-bolt", "rat", now)
	if err != nil {
		t.Fatalf("casting: %v", err)
	}

	testutil.AssertEqual(t, "strike count", combat.strikes, 1)
	testutil.AssertEqual(t, "caster message", result.CasterMsg, "Your Fire Bolt sears rat!")
}

func TestEngine_Cast_AttackTargetsParticipant(t *testing.T) {
	now := time.Now()
	engine, reg, combat := testEngine(t)
	caster := addSessionWithSpells(t, reg, "Ayla", []string{"fire-bolt"})
	addSessionWithSpells(t, reg, "Brom", nil)

	// No creature named Brom anywhere; the co-located participant is a
	// valid enemy target.
	result, err := engine.Cast(t.Context(), caster, "fire-bolt", "Brom", now)
	if err != nil {
		t.Fatalf("casting: %v", err)
	}

	testutil.AssertEqual(t, "strike count", combat.strikes, 1)
	testutil.AssertEqual(t, "caster message", result.CasterMsg, "Your Fire Bolt sears Brom!")
}

func TestEngine_Cast_HealScaling(t *testing.T) {
	now := time.Now()
	engine, reg, _ := testEngine(t)
	caster := addSessionWithSpells(t, reg, "Ayla", []string{"second-wind"})

	caster.ApplyDamage(6)
	hurt := caster.Character.HP

	_, err := engine.Cast(t.Context(), caster, "second-wind", "", now)
	if err != nil {
		t.Fatalf("casting: %v", err)
	}

	// Fixed die 1, flat bonus 2, plus the caster's level (1).
	testutil.AssertEqual(t, "healed amount", caster.Character.HP, hurt+4)
}

func TestEngine_Cast_Survey(t *testing.T) {
	now := time.Now()
	engine, reg, combat := testEngine(t)
	caster := addSessionWithSpells(t, reg, "Ayla", []string{"detect-life"})
	combat.creatures[world.Location{Zone: "keep", X: 1, Y: 0}.String()] = []string{"rat", "goblin"}

	result, err := engine.Cast(t.Context(), caster, "detect-life", "", now)
	if err != nil {
		t.Fatalf("casting: %v", err)
	}

	if want := "east: rat, goblin"; !strings.Contains(result.CasterMsg, want) {
		t.Errorf("expected survey to mention %q, got %q", want, result.CasterMsg)
	}
}

func TestEngine_Cast_GateBusy(t *testing.T) {
	now := time.Now()
	engine, reg, _ := testEngine(t)
	caster := addSessionWithSpells(t, reg, "Ayla", []string{"bless", "cure-wounds"})

	_, err := engine.Cast(t.Context(), caster, "bless", "", now)
	if err != nil {
		t.Fatalf("first cast: %v", err)
	}

	_, err = engine.Cast(t.Context(), caster, "cure-wounds", "", now.Add(time.Second))
	var castErr *CastError
	if !errors.As(err, &castErr) {
		t.Fatalf("expected CastError, got %v", err)
	}

	// The gate rejection must not start the second spell's cooldown.
	_, ready := caster.SpellReady("cure-wounds", now.Add(time.Second))
	testutil.AssertEqual(t, "cooldown untouched", ready, true)
}

func TestSpell_Validate(t *testing.T) {
	tests := map[string]struct {
		spell   Spell
		expPass bool
	}{
		"valid attack": {
			spell:   Spell{Name: "Fire Bolt", Target: TargetEnemy, Ability: "int", Attack: &AttackSpec{Damage: "1d10"}},
			expPass: true,
		},
		"valid utility": {
			spell:   Spell{Name: "Detect Life", Target: TargetNone, Utility: &UtilitySpec{Kind: "survey"}},
			expPass: true,
		},
		"no payload": {
			spell: Spell{Name: "Empty", Target: TargetSelf},
		},
		"two payloads": {
			spell: Spell{Name: "Both", Target: TargetEnemy, Attack: &AttackSpec{Damage: "1d4"}, Heal: &HealSpec{Dice: "1d4"}},
		},
		"attack targeting self": {
			spell: Spell{Name: "Fire Bolt", Target: TargetSelf, Ability: "int", Attack: &AttackSpec{Damage: "1d10"}},
		},
		"heal targeting enemy": {
			spell: Spell{Name: "Cure", Target: TargetEnemy, Heal: &HealSpec{Dice: "1d8"}},
		},
		"utility with target": {
			spell: Spell{Name: "Detect", Target: TargetSelf, Utility: &UtilitySpec{Kind: "survey"}},
		},
		"unknown utility kind": {
			spell: Spell{Name: "Detect", Target: TargetNone, Utility: &UtilitySpec{Kind: "teleport"}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.spell.Validate()
			testutil.AssertEqual(t, "valid", err == nil, tt.expPass)
		})
	}
}
