package spells

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pixil98/go-realm/internal/dice"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
)

// CastError is a user-facing cast rejection: wrong target, cooldown,
// unknown spell. It is not a system failure, and it never consumes the
// caster's action gate or spell cooldowns.
type CastError struct {
	Message string
}

func (e *CastError) Error() string {
	return e.Message
}

func newCastError(format string, args ...any) *CastError {
	return &CastError{Message: fmt.Sprintf(format, args...)}
}

// CombatDelegate is the slice of the combat coordinator the engine
// needs: offensive spells hand off to combat so engagement, death, and
// loot follow the same path as weapon attacks.
type CombatDelegate interface {
	// HasCreature reports whether a living creature with the name is
	// in the room.
	HasCreature(loc world.Location, name string) bool

	// SpellStrike resolves an attack spell against a named target, a
	// co-located participant or creature: attack roll, damage,
	// engagement, and death handling. The returned string is the
	// caster's own line; room narration is published by the
	// coordinator.
	SpellStrike(ctx context.Context, caster *game.Session, targetName string, spellId string, sp *Spell) (string, error)

	// CreatureNamesAt lists living creatures in a room, for survey
	// spells.
	CreatureNamesAt(loc world.Location) []string
}

// Result is what a successful cast produced, ready for delivery.
type Result struct {
	// CasterMsg always goes to the caster.
	CasterMsg string

	// TargetId and TargetMsg are set when an ally other than the
	// caster was affected.
	TargetId  storage.Identifier
	TargetMsg string

	// RoomMsg, when set, is narrated to everyone else in the room.
	RoomMsg string
}

// Engine validates and resolves spell casts. Validation runs in a
// fixed order - known, spell cooldown, target, action gate - and
// nothing is consumed until the cast actually resolves.
type Engine struct {
	spells storage.Storer[*Spell]
	reg    *game.Registry
	combat CombatDelegate
}

func NewEngine(spells storage.Storer[*Spell], reg *game.Registry, combat CombatDelegate) *Engine {
	return &Engine{
		spells: spells,
		reg:    reg,
		combat: combat,
	}
}

// Get returns a spell definition by id, or nil.
func (e *Engine) Get(id string) *Spell {
	return e.spells.Get(id)
}

// Known lists the caster's spells with their definitions, skipping ids
// that no longer resolve.
func (e *Engine) Known(s *game.Session) map[string]*Spell {
	known := map[string]*Spell{}
	for _, id := range s.Character.KnownSpells {
		if sp := e.spells.Get(id); sp != nil {
			known[id] = sp
		}
	}
	return known
}

// Cast attempts a spell cast. On success the caster's action gate is
// consumed and the spell's private cooldown starts; on any rejection
// neither happens.
func (e *Engine) Cast(ctx context.Context, caster *game.Session, spellId, targetName string, now time.Time) (*Result, error) {
	spellId = strings.ToLower(spellId)

	if !caster.Character.KnowsSpell(spellId) {
		return nil, newCastError("You don't know any spell called '%s'.", spellId)
	}
	sp := e.spells.Get(spellId)
	if sp == nil {
		return nil, newCastError("You don't know any spell called '%s'.", spellId)
	}

	if remaining, ready := caster.SpellReady(spellId, now); !ready {
		return nil, newCastError("%s is still recharging (%.1fs).", sp.Name, remaining.Seconds())
	}

	target, err := e.resolveTarget(caster, sp, targetName)
	if err != nil {
		return nil, err
	}

	derived := caster.Derive(nil, now)
	if remaining, ready := caster.Gate().Ready(now, derived.Pace); !ready {
		return nil, newCastError("You are still recovering (%.1fs).", remaining.Seconds())
	}

	result, err := e.resolve(ctx, caster, sp, spellId, target, targetName, derived, now)
	if err != nil {
		return nil, err
	}

	caster.Gate().Consume(now)
	caster.StartSpellCooldown(spellId, now, sp.CooldownDuration())

	return result, nil
}

// resolveTarget applies the target rules. For ally spells it returns
// the affected session (the caster when no name is given); for other
// targets it returns nil.
func (e *Engine) resolveTarget(caster *game.Session, sp *Spell, targetName string) (*game.Session, error) {
	switch sp.Target {
	case TargetNone:
		if targetName != "" {
			return nil, newCastError("%s doesn't take a target.", sp.Name)
		}
		return nil, nil

	case TargetSelf:
		if targetName != "" && !caster.Character.MatchName(targetName) {
			return nil, newCastError("%s can only be cast on yourself.", sp.Name)
		}
		return nil, nil

	case TargetAlly:
		if targetName == "" || caster.Character.MatchName(targetName) {
			return caster, nil
		}
		ally := e.reg.FindSessionAt(caster.Loc, targetName)
		if ally == nil {
			return nil, newCastError("You don't see %s here.", targetName)
		}
		return ally, nil

	case TargetEnemy:
		if targetName == "" {
			return nil, newCastError("%s needs a target.", sp.Name)
		}
		if victim := e.reg.FindSessionAt(caster.Loc, targetName); victim != nil && victim.CharId != caster.CharId {
			return nil, nil
		}
		if !e.combat.HasCreature(caster.Loc, targetName) {
			return nil, newCastError("You don't see %s here.", targetName)
		}
		return nil, nil
	}

	return nil, fmt.Errorf("spell has unknown target mode %q", sp.Target)
}

func (e *Engine) resolve(ctx context.Context, caster *game.Session, sp *Spell, spellId string, ally *game.Session, targetName string, derived game.Derived, now time.Time) (*Result, error) {
	switch {
	case sp.Attack != nil:
		msg, err := e.combat.SpellStrike(ctx, caster, targetName, spellId, sp)
		if err != nil {
			return nil, err
		}
		return &Result{CasterMsg: msg}, nil

	case sp.Heal != nil:
		target := ally
		if target == nil {
			target = caster
		}

		amount := dice.RollNotation(sp.Heal.Dice, 1) + sp.Heal.Bonus
		if sp.Heal.AddAbility != "" {
			amount += derived.Mod(sp.Heal.AddAbility)
		}
		if sp.Heal.AddLevel {
			amount += caster.Character.Level
		}
		if amount < 1 {
			amount = 1
		}
		restored := target.Heal(amount)

		if target == caster {
			return &Result{
				CasterMsg: fmt.Sprintf("You cast %s on yourself, restoring %d HP.", sp.Name, restored),
				RoomMsg:   fmt.Sprintf("%s glows briefly with healing light.", caster.Character.Name),
			}, nil
		}
		return &Result{
			CasterMsg: fmt.Sprintf("You cast %s on %s, restoring %d HP.", sp.Name, target.Character.Name, restored),
			TargetId:  target.CharId,
			TargetMsg: fmt.Sprintf("%s casts %s on you, restoring %d HP.", caster.Character.Name, sp.Name, restored),
			RoomMsg:   fmt.Sprintf("%s casts %s on %s.", caster.Character.Name, sp.Name, target.Character.Name),
		}, nil

	case sp.Buff != nil:
		target := ally
		if target == nil {
			target = caster
		}
		target.AddEffect(sp.BuffEffect(spellId, now))

		if target == caster {
			return &Result{
				CasterMsg: fmt.Sprintf("You cast %s. You feel its magic settle over you.", sp.Name),
				RoomMsg:   fmt.Sprintf("%s casts %s.", caster.Character.Name, sp.Name),
			}, nil
		}
		return &Result{
			CasterMsg: fmt.Sprintf("You cast %s on %s.", sp.Name, target.Character.Name),
			TargetId:  target.CharId,
			TargetMsg: fmt.Sprintf("%s casts %s on you.", caster.Character.Name, sp.Name),
			RoomMsg:   fmt.Sprintf("%s casts %s on %s.", caster.Character.Name, sp.Name, target.Character.Name),
		}, nil

	case sp.Utility != nil:
		return &Result{
			CasterMsg: e.survey(caster),
			RoomMsg:   fmt.Sprintf("%s casts %s, eyes unfocused for a moment.", caster.Character.Name, sp.Name),
		}, nil
	}

	return nil, fmt.Errorf("spell %q has no payload", spellId)
}

// survey reports living creatures in each adjacent, reachable room.
func (e *Engine) survey(caster *game.Session) string {
	var b strings.Builder
	b.WriteString("Your senses stretch into the surrounding rooms:\r\n")

	found := false
	for _, exit := range e.reg.Graph().Exits(caster.Loc) {
		if !exit.Passable() {
			continue
		}
		names := e.combat.CreatureNamesAt(exit.Target)
		if len(names) == 0 {
			continue
		}
		found = true
		b.WriteString(fmt.Sprintf("  %s: %s\r\n", exit.Dir, strings.Join(names, ", ")))
	}

	if !found {
		b.WriteString("  Nothing stirs nearby.\r\n")
	}
	return b.String()
}
