package game

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/world"
	"golang.org/x/crypto/bcrypt"
)

// AbilityNames lists the six ability scores in display order.
var AbilityNames = []string{"str", "dex", "con", "int", "wis", "cha"}

// ClassSpec holds per-class creation defaults.
type ClassSpec struct {
	Name    string
	HitDie  int
	BaseAC  int
	Weapon  string
	Ability string
	Spells  []string
}

// Classes are the playable classes offered at character creation.
var Classes = map[string]ClassSpec{
	"fighter": {Name: "Fighter", HitDie: 10, BaseAC: 14, Weapon: "longsword", Ability: "str"},
	"rogue":   {Name: "Rogue", HitDie: 8, BaseAC: 12, Weapon: "dagger", Ability: "dex"},
	"cleric":  {Name: "Cleric", HitDie: 8, BaseAC: 13, Weapon: "mace", Ability: "wis", Spells: []string{"cure-wounds", "bless", "sacred-flame"}},
	"wizard":  {Name: "Wizard", HitDie: 6, BaseAC: 10, Weapon: "quarterstaff", Ability: "int", Spells: []string{"fire-bolt", "magic-missile", "mage-armor"}},
}

// xpThresholds[n] is the total experience required to reach level n+1.
var xpThresholds = []int{0, 300, 900, 2700, 6500, 14000, 23000, 34000, 48000, 64000}

// LevelForXP returns the level a total experience amount earns.
func LevelForXP(xp int) int {
	level := 1
	for i, threshold := range xpThresholds {
		if xp >= threshold {
			level = i + 1
		}
	}
	return level
}

// Character is the persisted sheet for a participant. Mutable session
// state (effects, cooldowns, engagement) lives on Session, not here.
type Character struct {
	// Name is the character's display name.
	Name string `json:"name"`

	// Password is the bcrypt-hashed login credential.
	Password string `json:"password"`

	Class string `json:"class"`
	Level int    `json:"level"`
	XP    int    `json:"xp"`

	// Abilities holds the six base scores, keyed "str".."cha".
	Abilities map[string]int `json:"abilities"`

	MaxHP  int `json:"max_hp"`
	HP     int `json:"hp"`
	BaseAC int `json:"base_ac"`

	// Weapon is the equipped weapon's template id.
	Weapon string `json:"weapon,omitempty"`

	KnownSpells []string `json:"known_spells,omitempty"`

	Gold      int      `json:"gold"`
	Inventory []string `json:"inventory,omitempty"`

	// Home is where the character respawns after defeat.
	Home world.Location `json:"home"`

	// LastLocation is saved on quit for restoring on login.
	LastLocation world.Location `json:"last_location"`
}

// NewCharacter creates a level-one character of the given class.
// Abilities should come from dice.FourD6DropLowest per score.
func NewCharacter(name, passwordHash, class string, abilities map[string]int, home world.Location) *Character {
	spec := Classes[class]
	conMod := AbilityMod(abilities["con"])
	maxHP := spec.HitDie + conMod
	if maxHP < 1 {
		maxHP = 1
	}

	return &Character{
		Name:         name,
		Password:     passwordHash,
		Class:        class,
		Level:        1,
		Abilities:    abilities,
		MaxHP:        maxHP,
		HP:           maxHP,
		BaseAC:       spec.BaseAC,
		Weapon:       spec.Weapon,
		KnownSpells:  append([]string(nil), spec.Spells...),
		Gold:         10,
		Home:         home,
		LastLocation: home,
	}
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored hash.
func (c *Character) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(plain)) == nil
}

// Proficiency is the character's proficiency bonus at their level.
func (c *Character) Proficiency() int {
	return 2 + (c.Level-1)/4
}

// KnowsSpell reports whether the spell id is on the character's list.
func (c *Character) KnowsSpell(id string) bool {
	for _, s := range c.KnownSpells {
		if s == id {
			return true
		}
	}
	return false
}

// MatchName returns true if name matches this character's name
// (case-insensitive).
func (c *Character) MatchName(name string) bool {
	return strings.EqualFold(c.Name, name)
}

// GainXP adds experience and applies any level-ups: each new level adds
// half the class hit die plus the constitution modifier (minimum 1) to
// max HP and refills current HP. It returns the number of levels gained.
func (c *Character) GainXP(amount int) int {
	if amount <= 0 {
		return 0
	}
	c.XP += amount

	newLevel := LevelForXP(c.XP)
	gained := newLevel - c.Level
	if gained <= 0 {
		return 0
	}

	spec := Classes[c.Class]
	perLevel := spec.HitDie/2 + 1 + AbilityMod(c.Abilities["con"])
	if perLevel < 1 {
		perLevel = 1
	}

	c.Level = newLevel
	c.MaxHP += perLevel * gained
	c.HP = c.MaxHP
	return gained
}

// Validate satisfies storage.ValidatingSpec.
func (c *Character) Validate() error {
	el := errors.NewErrorList()

	if c.Name == "" {
		el.Add(fmt.Errorf("character name is required"))
	}
	if _, ok := Classes[c.Class]; !ok {
		el.Add(fmt.Errorf("unknown class %q", c.Class))
	}
	for _, ability := range AbilityNames {
		if _, ok := c.Abilities[ability]; !ok {
			el.Add(fmt.Errorf("missing ability score %q", ability))
		}
	}
	if c.MaxHP < 1 {
		el.Add(fmt.Errorf("max hp must be positive"))
	}

	return el.Err()
}
