package dice

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Roll describes a set of same-sided dice (e.g. 3d6).
type Roll struct {
	Count int `json:"count"`
	Sides int `json:"sides"`
}

// String returns the conventional NdS notation.
func (r Roll) String() string {
	return fmt.Sprintf("%dd%d", r.Count, r.Sides)
}

func (r Roll) IsZero() bool {
	return r.Count == 0 || r.Sides == 0
}

// Total rolls the dice and returns the sum. A zero roll totals 0.
func (r Roll) Total() int {
	if r.IsZero() {
		return 0
	}
	total := 0
	for range r.Count {
		total += rand.IntN(r.Sides) + 1
	}
	return total
}

// D20 rolls a single twenty-sided die.
func D20() int {
	return rand.IntN(20) + 1
}

// RangeN returns a uniform random integer in [min, max]. Degenerate
// ranges collapse to min.
func RangeN(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.IntN(max-min+1)
}

// FourD6DropLowest rolls 4d6 and sums the highest three. Used when a
// character record arrives without ability scores.
func FourD6DropLowest() int {
	lowest := 7
	total := 0
	for range 4 {
		r := rand.IntN(6) + 1
		total += r
		if r < lowest {
			lowest = r
		}
	}
	return total - lowest
}

// ParseNotation parses dice notation like "2d6", "2d6-2", "1d4+1", or a
// plain integer (returned as the modifier with a zero roll). The third
// return is false when the notation is malformed.
func ParseNotation(notation string) (Roll, int, bool) {
	cleaned := strings.ToLower(strings.ReplaceAll(notation, " ", ""))
	if cleaned == "" {
		return Roll{}, 0, false
	}

	if !strings.Contains(cleaned, "d") {
		n, err := strconv.Atoi(cleaned)
		if err != nil {
			return Roll{}, 0, false
		}
		return Roll{}, n, true
	}

	countPart, rest, _ := strings.Cut(cleaned, "d")
	count := 1
	if countPart != "" {
		n, err := strconv.Atoi(countPart)
		if err != nil {
			return Roll{}, 0, false
		}
		count = n
	}

	modifier := 0
	sidesPart := rest
	if before, after, found := strings.Cut(rest, "+"); found {
		sidesPart = before
		if n, err := strconv.Atoi(after); err == nil {
			modifier = n
		}
	} else if before, after, found := strings.Cut(rest, "-"); found {
		sidesPart = before
		if n, err := strconv.Atoi(after); err == nil {
			modifier = -n
		}
	}

	sides, err := strconv.Atoi(sidesPart)
	if err != nil || sides < 1 {
		return Roll{}, 0, false
	}
	if count < 1 {
		count = 1
	}

	return Roll{Count: count, Sides: sides}, modifier, true
}

// RollNotation rolls hit points from dice notation like "2d6", "2d6-2",
// or a plain integer. Malformed notation falls back to the given value.
// The result is always at least 1.
func RollNotation(notation string, fallback int) int {
	if fallback < 1 {
		fallback = 1
	}

	roll, modifier, ok := ParseNotation(notation)
	if !ok || (roll.IsZero() && modifier < 1) {
		return fallback
	}

	total := roll.Total() + modifier
	if total < 1 {
		total = 1
	}
	return total
}
