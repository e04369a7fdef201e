package loot

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/google/uuid"
	"github.com/pixil98/go-realm/internal/dice"
)

// DropSpec is one line of a loot table: an item key and its independent
// drop probability.
type DropSpec struct {
	Item   string  `json:"item"`
	Chance float64 `json:"chance"`
}

func (d *DropSpec) Validate() error {
	if d.Item == "" {
		return fmt.Errorf("drop item is required")
	}
	if d.Chance <= 0 || d.Chance > 1 {
		return fmt.Errorf("drop chance must be in (0, 1], got %v", d.Chance)
	}
	return nil
}

// Kind distinguishes gold piles from item drops.
type Kind string

const (
	KindGold Kind = "gold"
	KindItem Kind = "item"
)

// Entry is a claimable drop lying in a room. It exists from the moment
// a kill or successful search produces it until a participant picks it up.
type Entry struct {
	ID          string
	Kind        Kind
	ItemKey     string
	Amount      int
	Name        string
	Description string
}

// NewGoldEntry creates a gold pile drop.
func NewGoldEntry(amount int) Entry {
	return Entry{
		ID:          uuid.NewString(),
		Kind:        KindGold,
		Amount:      amount,
		Name:        fmt.Sprintf("%d gold coins", amount),
		Description: "A small pile of coins dropped by a defeated foe.",
	}
}

// NewItemEntry creates an item drop. Name and description come from the
// resolved item or weapon template.
func NewItemEntry(key, name, description string) Entry {
	return Entry{
		ID:          uuid.NewString(),
		Kind:        KindItem,
		ItemKey:     key,
		Name:        name,
		Description: description,
	}
}

// ItemResolver maps an item key to display name and description.
// Unknown keys should return a usable placeholder, not fail.
type ItemResolver func(key string) (name, description string)

// RollGold returns a uniform random amount in [min, max], or 0 when the
// range is empty or non-positive.
func RollGold(min, max int) int {
	if max <= 0 || max < min {
		return 0
	}
	if min < 0 {
		min = 0
	}
	return dice.RangeN(min, max)
}

// RollDrops rolls each table line independently and returns the entries
// that dropped.
func RollDrops(specs []DropSpec, resolve ItemResolver) []Entry {
	var entries []Entry
	for _, spec := range specs {
		if rand.Float64() > spec.Chance {
			continue
		}
		name, desc := resolve(spec.Item)
		entries = append(entries, NewItemEntry(spec.Item, name, desc))
	}
	return entries
}

// DistributeXP splits a creature's experience value among damage
// contributors proportionally to damage dealt. Every contributor gets
// floor(total * damage / totalDamage); the remainder from flooring is
// handed out one point at a time, round-robin, starting with the highest
// contributor, so the shares always sum to exactly the total.
func DistributeXP(contributions map[string]int, total int) map[string]int {
	awards := map[string]int{}
	if total <= 0 {
		return awards
	}

	type contributor struct {
		id     string
		damage int
	}
	var ordered []contributor
	totalDamage := 0
	for id, damage := range contributions {
		if damage <= 0 {
			continue
		}
		ordered = append(ordered, contributor{id: id, damage: damage})
		totalDamage += damage
	}
	if totalDamage <= 0 {
		return awards
	}

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].damage != ordered[j].damage {
			return ordered[i].damage > ordered[j].damage
		}
		return ordered[i].id < ordered[j].id
	})

	remaining := total
	for _, c := range ordered {
		share := total * c.damage / totalDamage
		if share > remaining {
			share = remaining
		}
		awards[c.id] = share
		remaining -= share
	}

	for i := 0; remaining > 0; i++ {
		awards[ordered[i%len(ordered)].id]++
		remaining--
	}

	for id, amount := range awards {
		if amount == 0 {
			delete(awards, id)
		}
	}

	return awards
}
