package commands

import (
	"context"

	"github.com/pixil98/go-realm/internal/game"
)

const helpText = `Commands:
  look [target]          look around, or at something
  north/south/east/west  move (n/s/e/w work too)
  open/close <dir>       work a door
  enter                  step through a portal
  attack <creature>      swing your weapon
  cast <spell> [target]  cast a known spell
  spells                 list your spellbook
  search                 search the room for hidden caches
  get [item|all]         pick things up off the ground
  equip <weapon>         wield a weapon from your pack
  inventory              check your pack
  score                  your character sheet
  say <words>            speak to the room
  talk <npc> <words>     strike up a conversation
  who                    see who is in the realm
  quit                   save and leave`

func (h *Handler) help(ctx context.Context, s *game.Session, args []string) error {
	h.bcast.ToSession(s.CharId, helpText)
	return nil
}
