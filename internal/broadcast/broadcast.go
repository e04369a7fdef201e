package broadcast

import (
	"log/slog"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
)

// Publisher provides the ability to publish messages to subjects.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Broadcaster fans game text out to participants. Every room-scoped
// send names its room explicitly; nothing is ever addressed to
// "wherever the actor currently is".
type Broadcaster struct {
	reg *game.Registry
	pub Publisher
}

func NewBroadcaster(reg *game.Registry, pub Publisher) *Broadcaster {
	return &Broadcaster{reg: reg, pub: pub}
}

// ToRoom sends to every subscriber of the room's subject. Delivery
// failures are logged, not propagated: narration is fire-and-forget.
func (b *Broadcaster) ToRoom(loc world.Location, msg string) {
	err := b.pub.Publish(game.RoomSubject(loc), []byte(msg))
	if err != nil {
		slog.Warn("publishing room message", "room", loc.String(), "error", err)
	}
}

// ToSession sends to one participant's private subject.
func (b *Broadcaster) ToSession(id storage.Identifier, msg string) {
	err := b.pub.Publish(game.SessionSubject(id), []byte(msg))
	if err != nil {
		slog.Warn("publishing session message", "session", id.String(), "error", err)
	}
}

// ToRoomExcept sends to each participant in the room except the
// excluded ids, via their private subjects. Used when the actor has
// already received a first-person line.
func (b *Broadcaster) ToRoomExcept(loc world.Location, msg string, exclude ...storage.Identifier) {
	skip := make(map[storage.Identifier]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	for _, s := range b.reg.SessionsAt(loc) {
		if skip[s.CharId] {
			continue
		}
		b.ToSession(s.CharId, msg)
	}
}
