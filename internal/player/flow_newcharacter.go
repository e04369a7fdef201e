package player

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pixil98/go-realm/internal/dice"
	"github.com/pixil98/go-realm/internal/game"
)

// classChoice adapts a class spec for the selector.
type classChoice struct {
	spec game.ClassSpec
}

func (c classChoice) Selector() string {
	return fmt.Sprintf("%s (d%d, %s)", c.spec.Name, c.spec.HitDie, c.spec.Weapon)
}

// newCharacter runs character creation: confirm the name, pick a
// password and class, then roll abilities 4d6-drop-lowest until the
// player accepts a set. Returns nil (no error) when the player backs
// out at the name confirmation.
func (f *loginFlow) newCharacter(br *bufio.Reader, w io.Writer, username string) (*game.Character, error) {
	ok, err := PromptYN(br, w, fmt.Sprintf("Did I get that right, %s (Y/N)? ", username))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var hash string
	for {
		passOne, err := Prompt(br, w, fmt.Sprintf("Give me a password for %s: ", username), WithValidator(
			func(str string) (bool, string) {
				if len(str) == 0 || strings.EqualFold(str, username) {
					return false, "Illegal password.\n"
				}
				return true, ""
			},
		))
		if err != nil {
			return nil, err
		}

		passTwo, err := Prompt(br, w, "Please retype password: ")
		if err != nil {
			return nil, err
		}

		if passOne != passTwo {
			w.Write([]byte("Passwords don't match... start over.\n"))
			continue
		}

		hash, err = game.HashPassword(passOne)
		if err != nil {
			return nil, err
		}
		break
	}

	choices := map[string]classChoice{}
	for id, spec := range game.Classes {
		choices[id] = classChoice{spec: spec}
	}
	class, err := NewSelector(choices).Prompt(br, w, "What is your calling?")
	if err != nil {
		return nil, err
	}

	abilities, err := f.rollAbilities(br, w)
	if err != nil {
		return nil, err
	}

	char := game.NewCharacter(username, hash, class, abilities, f.home)
	w.Write([]byte(fmt.Sprintf("Welcome, %s the %s.\n", char.Name, game.Classes[class].Name)))
	return char, nil
}

func (f *loginFlow) rollAbilities(br *bufio.Reader, w io.Writer) (map[string]int, error) {
	for {
		abilities := map[string]int{}
		var parts []string
		for _, name := range game.AbilityNames {
			abilities[name] = dice.FourD6DropLowest()
			parts = append(parts, fmt.Sprintf("%s %d", name, abilities[name]))
		}
		w.Write([]byte(fmt.Sprintf("Your scores: %s\n", strings.Join(parts, "  "))))

		keep, err := PromptYN(br, w, "Keep these scores (Y/N)? ")
		if err != nil {
			return nil, err
		}
		if keep {
			return abilities, nil
		}
	}
}
