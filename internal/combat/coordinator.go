package combat

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/pixil98/go-realm/internal/broadcast"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/loot"
	"github.com/pixil98/go-realm/internal/spells"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
)

// ActionError is a user-facing combat rejection: bad target, still
// recovering. Not a system failure.
type ActionError struct {
	Message string
}

func (e *ActionError) Error() string {
	return e.Message
}

func newActionError(format string, args ...any) *ActionError {
	return &ActionError{Message: fmt.Sprintf(format, args...)}
}

const (
	// defaultSwingInterval is how often a retaliation goroutine wakes
	// to consider acting. The creature's own attack interval decides
	// whether it actually swings.
	defaultSwingInterval = 500 * time.Millisecond

	defaultAttackInterval = 2 * time.Second

	// defaultRespawnDelay applies to non-unique creatures.
	defaultRespawnDelay = 30 * time.Second
)

type pendingRespawn struct {
	templateId string
	spec       *CreatureSpec
	loc        world.Location
	at         time.Time
}

// Coordinator owns every spawned creature and drives all combat:
// participant attacks, spell strikes, and the per-creature retaliation
// goroutines that run while a creature is engaged.
type Coordinator struct {
	reg     *game.Registry
	bcast   *broadcast.Broadcaster
	specs   storage.Storer[*CreatureSpec]
	weapons storage.Storer[*game.Weapon]
	items   storage.Storer[*game.Item]
	chars   storage.Storer[*game.Character]

	mu        sync.Mutex
	creatures map[string]*Creature
	respawns  []pendingRespawn

	swingInterval time.Duration
}

func NewCoordinator(reg *game.Registry, bcast *broadcast.Broadcaster, specs storage.Storer[*CreatureSpec], weapons storage.Storer[*game.Weapon], items storage.Storer[*game.Item], chars storage.Storer[*game.Character]) *Coordinator {
	return &Coordinator{
		reg:           reg,
		bcast:         bcast,
		specs:         specs,
		weapons:       weapons,
		items:         items,
		chars:         chars,
		creatures:     make(map[string]*Creature),
		swingInterval: defaultSwingInterval,
	}
}

// SpawnAll places one creature per spawn point listed in the world's
// zone grids. Unknown template ids are logged and skipped so one bad
// reference doesn't hold the world hostage.
func (c *Coordinator) SpawnAll() {
	c.reg.Graph().SpawnPoints(func(templateId string, loc world.Location) {
		spec := c.specs.Get(templateId)
		if spec == nil {
			slog.Warn("spawn references unknown creature", "template", templateId, "room", loc.String())
			return
		}
		c.addCreature(templateId, spec, loc)
	})
}

func (c *Coordinator) addCreature(templateId string, spec *CreatureSpec, loc world.Location) *Creature {
	creature := NewCreature(templateId, spec, loc)
	c.mu.Lock()
	c.creatures[creature.ID] = creature
	c.mu.Unlock()
	return creature
}

// CreaturesAt lists living creatures in a room, sorted by name.
func (c *Coordinator) CreaturesAt(loc world.Location) []*Creature {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*Creature
	for _, creature := range c.creatures {
		if creature.Loc == loc && creature.Alive() {
			out = append(out, creature)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// FindCreature looks up a living creature in a room by name.
func (c *Coordinator) FindCreature(loc world.Location, name string) *Creature {
	for _, creature := range c.CreaturesAt(loc) {
		if creature.MatchName(name) {
			return creature
		}
	}
	return nil
}

// HasCreature implements the spell engine's target check.
func (c *Coordinator) HasCreature(loc world.Location, name string) bool {
	return c.FindCreature(loc, name) != nil
}

// CreatureNamesAt implements the spell engine's survey support.
func (c *Coordinator) CreatureNamesAt(loc world.Location) []string {
	var names []string
	for _, creature := range c.CreaturesAt(loc) {
		names = append(names, creature.Name())
	}
	return names
}

// PlayerAttack resolves an attack by a participant against a
// co-located participant or creature. Participants are checked first;
// creatures catch the rest. The action gate is checked after target
// validation and consumed only when the swing happens.
func (c *Coordinator) PlayerAttack(ctx context.Context, s *game.Session, targetName string, now time.Time) (string, error) {
	victim := c.reg.FindSessionAt(s.Loc, targetName)
	if victim != nil && victim.CharId == s.CharId {
		return "", newActionError("You can't attack yourself.")
	}

	var target *Creature
	if victim == nil {
		if target = c.FindCreature(s.Loc, targetName); target == nil {
			return "", newActionError("You don't see %s here.", targetName)
		}
	}

	weapon := c.equippedWeapon(s)
	derived := s.Derive(weapon, now)

	if remaining, ready := s.Gate().Ready(now, derived.Pace); !ready {
		return "", newActionError("You are still recovering (%.1fs).", remaining.Seconds())
	}
	s.Gate().Consume(now)

	if weapon == nil {
		weapon = game.Unarmed
	}
	profile := AttackProfile{
		AttackBonus: derived.AttackBonus,
		BonusDice:   derived.AttackDice,
		Damage:      weapon.Damage,
		DamageBonus: derived.DamageBonus,
		DamageType:  weapon.DamageType,
	}

	if victim != nil {
		return c.strikeSession(s, victim, weapon.Name, profile, now), nil
	}
	return c.strike(ctx, s, target, weapon.Name, profile, now), nil
}

// spellProfile flattens an attack spell and the caster's derived stats
// into an attack profile. Damage adds the spell's flat bonus and any
// damage bonus from the caster's effects; the casting ability's
// modifier counts only when the spell opts in.
func (c *Coordinator) spellProfile(caster *game.Session, sp *spells.Spell, now time.Time) AttackProfile {
	derived := caster.Derive(&game.Weapon{Damage: sp.Attack.Damage, Ability: sp.Ability}, now)

	p := AttackProfile{
		AttackBonus: derived.AttackBonus,
		BonusDice:   derived.AttackDice,
		Damage:      sp.Attack.Damage,
		DamageBonus: sp.Attack.Bonus + derived.DamageBonus,
		DamageType:  sp.Attack.DamageType,
	}
	if !sp.Attack.AddAbility {
		// Derived damage folds the governing ability in.
		p.DamageBonus -= derived.Mod(sp.Ability)
	}
	return p
}

// SpellStrike resolves an attack spell through the same pipeline as a
// weapon swing, against a participant or creature. The spell engine
// has already validated the cast and handles gate and cooldown
// consumption.
func (c *Coordinator) SpellStrike(ctx context.Context, caster *game.Session, targetName string, spellId string, sp *spells.Spell) (string, error) {
	now := time.Now()
	profile := c.spellProfile(caster, sp, now)

	if victim := c.reg.FindSessionAt(caster.Loc, targetName); victim != nil && victim.CharId != caster.CharId {
		return c.strikeSession(caster, victim, sp.Name, profile, now), nil
	}

	target := c.FindCreature(caster.Loc, targetName)
	if target == nil {
		return "", newActionError("You don't see %s here.", targetName)
	}
	return c.strike(ctx, caster, target, sp.Name, profile, now), nil
}

// strike rolls the attack, applies damage, engages the creature, and
// narrates. Returns the attacker's own line.
func (c *Coordinator) strike(ctx context.Context, s *game.Session, target *Creature, attackName string, profile AttackProfile, now time.Time) string {
	outcome := RollAttack(profile, target.Spec.AC)

	// Even a miss starts the fight.
	c.engage(target, s, now)

	name := s.Character.Name
	targetName := target.Name()

	if !outcome.Hit {
		c.bcast.ToRoomExcept(target.Loc, fmt.Sprintf("%s attacks the %s and misses.", name, targetName), s.CharId)
		return fmt.Sprintf("You attack the %s with %s (%s). Miss!", targetName, attackName, outcome.Detail)
	}

	dead := c.damageCreature(target, s, outcome.Damage)

	crit := ""
	if outcome.Crit {
		crit = "Critical hit! "
	}
	c.bcast.ToRoomExcept(target.Loc, fmt.Sprintf("%s hits the %s for %d damage.", name, targetName, outcome.Damage), s.CharId)
	msg := fmt.Sprintf("%sYou hit the %s with %s (%s) for %d damage.", crit, targetName, attackName, outcome.Detail, outcome.Damage)

	if dead {
		c.handleDeath(ctx, target)
	}
	return msg
}

// strikeSession resolves an attack against another participant: the
// same roll as a creature strike, against the defender's derived AC.
// A defender dropping to zero respawns at home like any defeat.
func (c *Coordinator) strikeSession(s *game.Session, target *game.Session, attackName string, profile AttackProfile, now time.Time) string {
	defense := target.Derive(c.equippedWeapon(target), now)
	outcome := RollAttack(profile, defense.AC)

	name := s.Character.Name
	targetName := target.Character.Name

	if !outcome.Hit {
		c.bcast.ToSession(target.CharId, fmt.Sprintf("%s attacks you and misses.", name))
		c.bcast.ToRoomExcept(s.Loc, fmt.Sprintf("%s attacks %s and misses.", name, targetName), s.CharId, target.CharId)
		return fmt.Sprintf("You attack %s with %s (%s). Miss!", targetName, attackName, outcome.Detail)
	}

	hp := target.ApplyDamage(outcome.Damage)

	crit := ""
	if outcome.Crit {
		crit = "Critical hit! "
	}
	c.bcast.ToSession(target.CharId, fmt.Sprintf("%s hits you for %d damage! (%d/%d HP)", name, outcome.Damage, hp, target.Character.MaxHP))
	c.bcast.ToRoomExcept(s.Loc, fmt.Sprintf("%s hits %s for %d damage.", name, targetName, outcome.Damage), s.CharId, target.CharId)
	msg := fmt.Sprintf("%sYou hit %s with %s (%s) for %d damage.", crit, targetName, attackName, outcome.Detail, outcome.Damage)

	if hp == 0 {
		c.defeatBy(target, name)
	}
	return msg
}

// damageCreature applies damage and records the contribution, capped
// at the hit points actually removed. Returns true when this blow
// killed the creature.
func (c *Coordinator) damageCreature(target *Creature, s *game.Session, damage int) bool {
	target.mu.Lock()
	defer target.mu.Unlock()

	if target.hp <= 0 {
		return false
	}

	dealt := damage
	if dealt > target.hp {
		dealt = target.hp
	}
	target.hp -= dealt
	target.contributions[string(s.CharId)] += dealt

	return target.hp == 0
}

// engage adds a participant to the creature's engaged set, flipping it
// to the engaged state and starting its retaliation goroutine when it
// was idle.
func (c *Coordinator) engage(target *Creature, s *game.Session, now time.Time) {
	target.mu.Lock()
	if target.hp <= 0 {
		target.mu.Unlock()
		return
	}

	target.engaged[s.CharId] = true
	wasIdle := target.state == StateIdle
	if wasIdle {
		target.transition(StateEngaged)
		// First retaliation waits one full interval; the victim of an
		// ambush still gets a moment.
		target.nextSwing = now.Add(c.attackInterval(target.Spec))
	}
	stop := target.stop
	target.mu.Unlock()

	s.InCombat = true

	if wasIdle {
		go c.retaliate(target, stop)
	}
}

// retaliate is the per-creature combat loop. It runs from the moment
// the creature becomes engaged until it returns to idle or dies.
func (c *Coordinator) retaliate(creature *Creature, stop chan struct{}) {
	ticker := time.NewTicker(c.swingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.creatureSwing(creature, time.Now())
		}
	}
}

// creatureSwing is one wake-up of the retaliation loop: prune the
// engaged set, disengage if it drained, otherwise attack one engaged
// participant chosen uniformly at random.
func (c *Coordinator) creatureSwing(creature *Creature, now time.Time) {
	creature.mu.Lock()

	if creature.state != StateEngaged || creature.hp <= 0 {
		creature.mu.Unlock()
		return
	}

	var targets []*game.Session
	for id := range creature.engaged {
		s := c.reg.GetSession(id)
		if s == nil || s.Loc != creature.Loc || s.Character.HP <= 0 {
			delete(creature.engaged, id)
			continue
		}
		targets = append(targets, s)
	}

	if len(targets) == 0 {
		stopCh := creature.transition(StateIdle)
		creature.mu.Unlock()
		if stopCh != nil {
			close(stopCh)
		}
		return
	}

	if now.Before(creature.nextSwing) {
		creature.mu.Unlock()
		return
	}
	creature.nextSwing = now.Add(c.attackInterval(creature.Spec))
	target := targets[rand.IntN(len(targets))]
	creature.mu.Unlock()

	c.creatureAttack(creature, target, now)
}

func (c *Coordinator) creatureAttack(creature *Creature, target *game.Session, now time.Time) {
	derived := target.Derive(c.equippedWeapon(target), now)

	profile := AttackProfile{
		AttackBonus: creature.Spec.AttackBonus,
		Damage:      creature.Spec.Damage,
		DamageType:  creature.Spec.DamageType,
	}
	outcome := RollAttack(profile, derived.AC)

	name := creature.Name()
	if !outcome.Hit {
		c.bcast.ToSession(target.CharId, fmt.Sprintf("The %s attacks you and misses.", name))
		c.bcast.ToRoomExcept(creature.Loc, fmt.Sprintf("The %s attacks %s and misses.", name, target.Character.Name), target.CharId)
		return
	}

	hp := target.ApplyDamage(outcome.Damage)
	c.bcast.ToSession(target.CharId, fmt.Sprintf("The %s hits you for %d damage! (%d/%d HP)", name, outcome.Damage, hp, target.Character.MaxHP))
	c.bcast.ToRoomExcept(creature.Loc, fmt.Sprintf("The %s hits %s for %d damage.", name, target.Character.Name, outcome.Damage), target.CharId)

	if hp == 0 {
		c.defeatBy(target, "the "+creature.Name())
	}
}

// defeatBy handles a participant dropping to zero: they leave every
// fight and wake at home with full HP and no effects.
func (c *Coordinator) defeatBy(target *game.Session, assailant string) {
	fallen := target.Loc

	c.bcast.ToRoomExcept(fallen, fmt.Sprintf("%s collapses under %s's assault!", target.Character.Name, assailant), target.CharId)
	c.Disengage(target)

	err := c.reg.Respawn(target)
	if err != nil {
		slog.Error("respawning participant", "char", target.CharId.String(), "error", err)
		return
	}

	c.bcast.ToSession(target.CharId, "You have been defeated! You awaken at home, whole but humbled.")
	c.bcast.ToRoomExcept(target.Loc, fmt.Sprintf("%s staggers in, looking shaken.", target.Character.Name), target.CharId)

	c.saveCharacter(target)
}

// Disengage removes a participant from every fight, e.g. when they
// flee the room or quit.
func (c *Coordinator) Disengage(s *game.Session) {
	c.mu.Lock()
	all := make([]*Creature, 0, len(c.creatures))
	for _, creature := range c.creatures {
		all = append(all, creature)
	}
	c.mu.Unlock()

	for _, creature := range all {
		creature.mu.Lock()
		if _, ok := creature.engaged[s.CharId]; !ok {
			creature.mu.Unlock()
			continue
		}
		delete(creature.engaged, s.CharId)
		var stopCh chan struct{}
		if len(creature.engaged) == 0 && creature.state == StateEngaged {
			stopCh = creature.transition(StateIdle)
		}
		creature.mu.Unlock()
		if stopCh != nil {
			close(stopCh)
		}
	}

	s.InCombat = false
}

// OnSessionEnter fires aggression: every living aggressive creature in
// the room a participant just entered engages them immediately.
func (c *Coordinator) OnSessionEnter(s *game.Session, now time.Time) {
	for _, creature := range c.CreaturesAt(s.Loc) {
		if !creature.Spec.Aggressive {
			continue
		}
		c.engage(creature, s, now)
		c.bcast.ToSession(s.CharId, fmt.Sprintf("The %s snarls and turns on you!", creature.Name()))
		c.bcast.ToRoomExcept(s.Loc, fmt.Sprintf("The %s turns on %s!", creature.Name(), s.Character.Name), s.CharId)
	}
}

// handleDeath removes the dead creature, drops its loot, splits its
// experience by damage dealt, and schedules its respawn.
func (c *Coordinator) handleDeath(ctx context.Context, creature *Creature) {
	creature.mu.Lock()
	stopCh := creature.transition(StateIdle)
	contributions := creature.contributions
	engaged := make([]storage.Identifier, 0, len(creature.engaged))
	for id := range creature.engaged {
		engaged = append(engaged, id)
	}
	creature.engaged = make(map[storage.Identifier]bool)
	creature.contributions = make(map[string]int)
	creature.mu.Unlock()
	if stopCh != nil {
		close(stopCh)
	}

	delay := defaultRespawnDelay
	if creature.Spec.Unique && creature.Spec.RespawnDelay > 0 {
		delay = time.Duration(creature.Spec.RespawnDelay) * time.Second
	}

	c.mu.Lock()
	delete(c.creatures, creature.ID)
	c.respawns = append(c.respawns, pendingRespawn{
		templateId: creature.TemplateId,
		spec:       creature.Spec,
		loc:        creature.Loc,
		at:         time.Now().Add(delay),
	})
	c.mu.Unlock()

	c.bcast.ToRoom(creature.Loc, fmt.Sprintf("The %s dies!", creature.Name()))

	// Loot.
	var entries []loot.Entry
	if gold := loot.RollGold(creature.Spec.GoldMin, creature.Spec.GoldMax); gold > 0 {
		entries = append(entries, loot.NewGoldEntry(gold))
	}
	entries = append(entries, loot.RollDrops(creature.Spec.Drops, c.resolveItem)...)
	if len(entries) > 0 {
		c.reg.AddDrops(creature.Loc, entries...)
		c.bcast.ToRoom(creature.Loc, "Something drops to the ground.")
	}

	// Experience, split by damage dealt. The shares sum to exactly
	// the creature's value.
	awards := loot.DistributeXP(contributions, creature.Spec.XP)
	for id, amount := range awards {
		s := c.reg.GetSession(storage.Identifier(id))
		if s == nil {
			continue
		}

		levels := s.Character.GainXP(amount)
		c.bcast.ToSession(s.CharId, fmt.Sprintf("You gain %d experience.", amount))
		if levels > 0 {
			c.bcast.ToSession(s.CharId, fmt.Sprintf("You have reached level %d!", s.Character.Level))
			c.bcast.ToRoomExcept(s.Loc, fmt.Sprintf("%s looks stronger.", s.Character.Name), s.CharId)
		}
		c.saveCharacter(s)
	}

	// Everyone who was fighting it may now be out of combat entirely.
	for _, id := range engaged {
		if s := c.reg.GetSession(id); s != nil && !c.sessionEngaged(id) {
			s.InCombat = false
		}
	}
}

// sessionEngaged reports whether any living creature still has the
// participant in its engaged set.
func (c *Coordinator) sessionEngaged(id storage.Identifier) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, creature := range c.creatures {
		creature.mu.Lock()
		engaged := creature.engaged[id]
		creature.mu.Unlock()
		if engaged {
			return true
		}
	}
	return false
}

// Tick is driven by the realm driver: it revives due respawns and
// regenerates idle creatures.
func (c *Coordinator) Tick(ctx context.Context) error {
	now := time.Now()

	c.mu.Lock()
	var due []pendingRespawn
	remaining := c.respawns[:0]
	for _, r := range c.respawns {
		if now.Before(r.at) {
			remaining = append(remaining, r)
			continue
		}
		due = append(due, r)
	}
	c.respawns = remaining

	for _, creature := range c.creatures {
		creature.mu.Lock()
		if creature.state == StateIdle && creature.hp > 0 && creature.hp < creature.maxHP {
			creature.hp++
		}
		creature.mu.Unlock()
	}
	c.mu.Unlock()

	for _, r := range due {
		c.addCreature(r.templateId, r.spec, r.loc)
		c.bcast.ToRoom(r.loc, fmt.Sprintf("A %s prowls in.", r.spec.Name))
	}

	return nil
}

// Shutdown stops every retaliation goroutine.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	all := make([]*Creature, 0, len(c.creatures))
	for _, creature := range c.creatures {
		all = append(all, creature)
	}
	c.mu.Unlock()

	for _, creature := range all {
		creature.mu.Lock()
		stopCh := creature.transition(StateIdle)
		creature.engaged = make(map[storage.Identifier]bool)
		creature.mu.Unlock()
		if stopCh != nil {
			close(stopCh)
		}
	}
}

func (c *Coordinator) equippedWeapon(s *game.Session) *game.Weapon {
	if s.Character.Weapon == "" {
		return nil
	}
	return c.weapons.Get(s.Character.Weapon)
}

// resolveItem maps drop keys to display names, trying weapons first,
// then items, then falling back to the key itself.
func (c *Coordinator) resolveItem(key string) (string, string) {
	if w := c.weapons.Get(key); w != nil {
		return w.Name, w.Description
	}
	if i := c.items.Get(key); i != nil {
		return i.Name, i.Description
	}
	return key, "An unremarkable object."
}

func (c *Coordinator) saveCharacter(s *game.Session) {
	err := s.SaveCharacter(c.chars)
	if err != nil {
		slog.Warn("saving character", "char", s.CharId.String(), "error", err)
	}
}

func (c *Coordinator) attackInterval(spec *CreatureSpec) time.Duration {
	if spec.AttackInterval > 0 {
		return time.Duration(spec.AttackInterval * float64(time.Second))
	}
	return defaultAttackInterval
}
