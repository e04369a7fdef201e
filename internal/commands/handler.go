package commands

import (
	"context"
	"strings"

	"github.com/pixil98/go-realm/internal/broadcast"
	"github.com/pixil98/go-realm/internal/combat"
	"github.com/pixil98/go-realm/internal/dialogue"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/spells"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
)

// verbFunc is the signature every command handler implements. The
// session is already resolved and marked active by the time it runs.
type verbFunc func(ctx context.Context, s *game.Session, args []string) error

// Handler parses player input and dispatches it to the verb table.
// Handlers deliver their output through the broadcaster; only
// UserErrors travel back up to the connection for direct display.
type Handler struct {
	reg    *game.Registry
	bcast  *broadcast.Broadcaster
	coord  *combat.Coordinator
	engine *spells.Engine
	talker *dialogue.Talker

	chars   storage.Storer[*game.Character]
	weapons storage.Storer[*game.Weapon]
	items   storage.Storer[*game.Item]

	verbs map[string]verbFunc
}

func NewHandler(reg *game.Registry, bcast *broadcast.Broadcaster, coord *combat.Coordinator, engine *spells.Engine, talker *dialogue.Talker, chars storage.Storer[*game.Character], weapons storage.Storer[*game.Weapon], items storage.Storer[*game.Item]) *Handler {
	h := &Handler{
		reg:     reg,
		bcast:   bcast,
		coord:   coord,
		engine:  engine,
		talker:  talker,
		chars:   chars,
		weapons: weapons,
		items:   items,
	}

	h.verbs = map[string]verbFunc{
		"look":      h.look,
		"l":         h.look,
		"go":        h.walk,
		"open":      h.open,
		"close":     h.close,
		"enter":     h.enter,
		"attack":    h.attack,
		"kill":      h.attack,
		"k":         h.attack,
		"cast":      h.cast,
		"spells":    h.listSpells,
		"search":    h.search,
		"get":       h.get,
		"take":      h.get,
		"loot":      h.get,
		"equip":     h.equip,
		"wield":     h.equip,
		"inventory": h.inventory,
		"inv":       h.inventory,
		"i":         h.inventory,
		"score":     h.score,
		"say":       h.say,
		"talk":      h.talk,
		"who":       h.who,
		"help":      h.help,
		"quit":      h.quit,
	}

	return h
}

// Exec parses one line of player input and runs the matching verb.
func (h *Handler) Exec(ctx context.Context, charId storage.Identifier, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	s := h.reg.GetSession(charId)
	if s == nil {
		return game.ErrSessionNotFound
	}
	h.reg.MarkSessionActive(charId)

	verb := strings.ToLower(fields[0])
	args := fields[1:]

	// Bare directions are movement.
	if dir, ok := world.ParseDirection(verb); ok {
		return h.move(ctx, s, dir)
	}

	fn, ok := h.verbs[verb]
	if !ok {
		return newUserErrorf("Unknown command: %s. Try 'help'.", verb)
	}
	return fn(ctx, s, args)
}

// equippedWeapon resolves the session's weapon template, or nil when
// nothing usable is equipped.
func (h *Handler) equippedWeapon(s *game.Session) *game.Weapon {
	if s.Character.Weapon == "" {
		return nil
	}
	return h.weapons.Get(s.Character.Weapon)
}

// resolveItem maps drop keys to display names, weapons first, then
// items, then the key itself.
func (h *Handler) resolveItem(key string) (string, string) {
	if w := h.weapons.Get(key); w != nil {
		return w.Name, w.Description
	}
	if i := h.items.Get(key); i != nil {
		return i.Name, i.Description
	}
	return key, "An unremarkable object."
}
