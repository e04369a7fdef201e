package player

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
)

const maxPasswordTries = 3

type loginFlow struct {
	chars storage.Storer[*game.Character]

	// home is where brand-new characters start and respawn.
	home world.Location
}

// Run walks a fresh connection through name and password, creating a
// character when the name is unclaimed. It returns the authenticated
// character sheet.
func (f *loginFlow) Run(br *bufio.Reader, w io.Writer) (*game.Character, error) {
	w.Write([]byte("Welcome to the Realm!\n"))

	for {
		username, err := Prompt(br, w, "By what name do you wish to be known? ",
			WithValidator(func(str string) (bool, string) {
				if len(str) == 0 {
					return false, "Invalid name, please try another.\n"
				}
				for _, r := range str {
					if !unicode.IsLetter(r) {
						return false, "Names may only contain letters.\n"
					}
				}
				return true, ""
			},
			))
		if err != nil {
			return nil, err
		}

		char := f.chars.Get(strings.ToLower(username))

		// Must be a new character
		if char == nil {
			char, err = f.newCharacter(br, w, username)
			if err != nil {
				return nil, err
			}
			if char == nil {
				continue
			}

			// Existing user
		} else {
			_, err = Prompt(br, w, "Password: ", WithMaxTries(maxPasswordTries), WithValidator(
				func(str string) (bool, string) {
					if !char.CheckPassword(str) {
						return false, "Wrong password.\n"
					}
					return true, ""
				},
			))
			if err != nil {
				return nil, err
			}
		}

		return char, nil
	}
}
