package combat

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/dice"
	"github.com/pixil98/go-realm/internal/loot"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
)

// Secret is a confidence an NPC shares only after enough conversation.
type Secret struct {
	// Threshold is the number of exchanges required before the fact
	// may surface.
	Threshold int    `json:"threshold"`
	Fact      string `json:"fact"`
}

// Persona makes a creature talkable: it seeds the dialogue generator's
// prompt and gates its secrets behind conversation counts.
type Persona struct {
	// Voice describes how the NPC speaks, in prose, for the prompt.
	Voice string `json:"voice"`

	Secrets []Secret `json:"secrets,omitempty"`
}

// CreatureSpec is a loadable creature template.
type CreatureSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// HP is dice notation rolled per spawned instance, e.g. "2d6-2".
	HP string `json:"hp"`

	AC          int    `json:"ac"`
	AttackBonus int    `json:"attack_bonus"`
	Damage      string `json:"damage"`
	DamageType  string `json:"damage_type,omitempty"`

	XP int `json:"xp"`

	GoldMin int             `json:"gold_min,omitempty"`
	GoldMax int             `json:"gold_max,omitempty"`
	Drops   []loot.DropSpec `json:"drops,omitempty"`

	// Aggressive creatures engage participants on room entry;
	// defensive ones only fight back.
	Aggressive bool `json:"aggressive,omitempty"`

	// AttackInterval is seconds between retaliation swings. Zero
	// means the coordinator default.
	AttackInterval float64 `json:"attack_interval,omitempty"`

	// Unique creatures respawn once per RespawnDelay instead of on
	// the standard timer. At most one instance exists at a time.
	Unique       bool `json:"unique,omitempty"`
	RespawnDelay int  `json:"respawn_delay,omitempty"`

	Persona *Persona `json:"persona,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (s *CreatureSpec) Validate() error {
	el := errors.NewErrorList()

	if s.Name == "" {
		el.Add(fmt.Errorf("creature name is required"))
	}
	if s.HP == "" {
		el.Add(fmt.Errorf("creature hp is required"))
	}
	if s.Damage == "" {
		el.Add(fmt.Errorf("creature damage is required"))
	}
	if s.XP < 0 {
		el.Add(fmt.Errorf("creature xp cannot be negative"))
	}
	if s.GoldMax < s.GoldMin {
		el.Add(fmt.Errorf("gold_max must be >= gold_min"))
	}
	if s.AttackInterval < 0 {
		el.Add(fmt.Errorf("attack_interval cannot be negative"))
	}
	for i, d := range s.Drops {
		err := d.Validate()
		if err != nil {
			el.Add(fmt.Errorf("drop %d: %w", i, err))
		}
	}
	if s.Persona != nil && s.Persona.Voice == "" {
		el.Add(fmt.Errorf("persona voice is required"))
	}

	return el.Err()
}

// Creature is one spawned instance of a template, pinned to its room.
type Creature struct {
	ID         string
	TemplateId string
	Spec       *CreatureSpec
	Loc        world.Location

	mu    sync.Mutex
	maxHP int
	hp    int
	state State

	// engaged is the set of participants fighting this creature.
	// When it drains, the creature returns to idle.
	engaged map[storage.Identifier]bool

	// contributions tracks damage dealt per participant, for the
	// experience split on death.
	contributions map[string]int

	// nextSwing throttles retaliation to the template's interval.
	nextSwing time.Time

	// stop ends the retaliation goroutine. Nil while idle.
	stop chan struct{}
}

// NewCreature spawns an instance of a template, rolling its hit points
// from the template's dice.
func NewCreature(templateId string, spec *CreatureSpec, loc world.Location) *Creature {
	hp := dice.RollNotation(spec.HP, 1)
	return &Creature{
		ID:            uuid.NewString(),
		TemplateId:    templateId,
		Spec:          spec,
		Loc:           loc,
		maxHP:         hp,
		hp:            hp,
		engaged:       make(map[storage.Identifier]bool),
		contributions: make(map[string]int),
	}
}

// transition is the single place the state machine changes state. It
// must be called with the creature lock held; it returns the stop
// channel to close (when leaving engaged) so callers can close it
// outside the lock.
func (c *Creature) transition(to State) chan struct{} {
	if c.state == to {
		return nil
	}
	c.state = to

	switch to {
	case StateEngaged:
		c.stop = make(chan struct{})
		return nil
	case StateIdle:
		stop := c.stop
		c.stop = nil
		return stop
	}
	return nil
}

// Name returns the creature's display name.
func (c *Creature) Name() string {
	return c.Spec.Name
}

// MatchName reports whether input names this creature
// (case-insensitive, full name or any word of it).
func (c *Creature) MatchName(input string) bool {
	if strings.EqualFold(input, c.Spec.Name) {
		return true
	}
	for _, word := range strings.Fields(c.Spec.Name) {
		if strings.EqualFold(input, word) {
			return true
		}
	}
	return false
}

// State returns the creature's combat posture.
func (c *Creature) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HP returns current and max hit points.
func (c *Creature) HP() (hp, max int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hp, c.maxHP
}

// Alive reports whether the creature has hit points left.
func (c *Creature) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hp > 0
}

// Talkative reports whether the creature carries a persona.
func (c *Creature) Talkative() bool {
	return c.Spec.Persona != nil
}

// Condition is a one-word health description for room rendering.
func (c *Creature) Condition() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.hp <= 0:
		return "dead"
	case c.hp*4 <= c.maxHP:
		return "bloodied"
	case c.hp < c.maxHP:
		return "wounded"
	}
	return "unhurt"
}
