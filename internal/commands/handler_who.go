package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/storage"
)

// who lists everyone currently in the world.
func (h *Handler) who(ctx context.Context, s *game.Session, args []string) error {
	var lines []string
	h.reg.ForEachSession(func(_ storage.Identifier, other *game.Session) {
		spec := game.Classes[other.Character.Class]
		line := fmt.Sprintf("  %s, level %d %s", other.Character.Name, other.Character.Level, spec.Name)
		if flags := other.Flags(); len(flags) > 0 {
			line = fmt.Sprintf("%s (%s)", line, strings.Join(flags, ", "))
		}
		lines = append(lines, line)
	})
	sort.Strings(lines)

	h.bcast.ToSession(s.CharId, fmt.Sprintf("%d adventurer(s) in the realm:\r\n%s", len(lines), strings.Join(lines, "\r\n")))
	return nil
}
