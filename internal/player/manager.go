package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pixil98/go-realm/internal/broadcast"
	"github.com/pixil98/go-realm/internal/combat"
	"github.com/pixil98/go-realm/internal/commands"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
)

const (
	defaultLinklessTimeout = 2 * time.Minute
	defaultIdleTimeout     = 15 * time.Minute
)

// PlayerManager owns the connection side of a session's lifecycle:
// login, attach (fresh or reconnect), the play loop, and the linkless
// and idle sweeps.
type PlayerManager struct {
	reg     *game.Registry
	coord   *combat.Coordinator
	bcast   *broadcast.Broadcaster
	handler *commands.Handler
	chars   storage.Storer[*game.Character]

	loginFlow *loginFlow

	linklessTimeout time.Duration
	idleTimeout     time.Duration
}

func NewPlayerManager(reg *game.Registry, coord *combat.Coordinator, bcast *broadcast.Broadcaster, handler *commands.Handler, chars storage.Storer[*game.Character], home world.Location, opts ...PlayerManagerOpt) *PlayerManager {
	m := &PlayerManager{
		reg:             reg,
		coord:           coord,
		bcast:           bcast,
		handler:         handler,
		chars:           chars,
		loginFlow:       &loginFlow{chars: chars, home: home},
		linklessTimeout: defaultLinklessTimeout,
		idleTimeout:     defaultIdleTimeout,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RunSession owns one connection from login to teardown.
func (m *PlayerManager) RunSession(ctx context.Context, conn io.ReadWriter) error {
	br := bufio.NewReader(conn)

	char, err := m.loginFlow.Run(br, conn)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	charId := storage.Identifier(strings.ToLower(char.Name))

	// New characters exist only in memory until this first save.
	err = m.chars.Save(charId.String(), char)
	if err != nil {
		return fmt.Errorf("saving character: %w", err)
	}

	msgs := make(chan []byte, 64)
	s, err := m.attach(charId, char, msgs)
	if err != nil {
		return fmt.Errorf("attaching session: %w", err)
	}

	p := &Player{
		in:      br,
		out:     conn,
		charId:  charId,
		reg:     m.reg,
		handler: m.handler,
		msgs:    msgs,
		done:    s.Done(),
	}

	return m.release(s, p.Play(ctx))
}

// attach joins a character to the world. A session that is already
// live (linkless or attached elsewhere) is taken over: the old
// connection is kicked and the world state carries over untouched.
func (m *PlayerManager) attach(charId storage.Identifier, char *game.Character, msgs chan []byte) (*game.Session, error) {
	if existing := m.reg.GetSession(charId); existing != nil {
		existing.Kick()
		existing.Reattach(msgs)

		err := existing.Subscribe(game.RoomSubject(existing.Loc))
		if err != nil {
			return nil, err
		}
		err = existing.Subscribe(game.SessionSubject(charId))
		if err != nil {
			return nil, err
		}

		slog.Info("session reattached", "char", charId.String())
		return existing, nil
	}

	loc := char.LastLocation
	if _, ok := m.reg.Graph().EntryOf(loc.Zone); !ok {
		loc = char.Home
	}

	s, err := m.reg.AddSession(charId, char, msgs, loc)
	if err != nil {
		return nil, err
	}

	m.bcast.ToRoomExcept(loc, fmt.Sprintf("%s enters the world.", char.Name), charId)
	m.coord.OnSessionEnter(s, time.Now())

	slog.Info("session started", "char", charId.String(), "room", loc.String())
	return s, nil
}

// release decides what happens to the session when its play loop ends.
func (m *PlayerManager) release(s *game.Session, playErr error) error {
	// The session was taken over or timed out; someone else owns (or
	// already removed) it.
	if errors.Is(playErr, errSessionEnded) {
		return nil
	}

	if s.Quit {
		m.remove(s)
		return playErr
	}

	// Connection dropped mid-game: the character lingers linkless so a
	// reconnect lands back in the same fight, same room, same effects.
	s.MarkLinkless()
	m.save(s)
	slog.Info("session linkless", "char", s.CharId.String())
	return playErr
}

// remove tears a session out of the world for good.
func (m *PlayerManager) remove(s *game.Session) {
	m.coord.Disengage(s)
	m.save(s)

	err := m.reg.RemoveSession(s.CharId)
	if err != nil {
		slog.Warn("removing session", "char", s.CharId.String(), "error", err)
	}
}

func (m *PlayerManager) save(s *game.Session) {
	err := s.SaveCharacter(m.chars)
	if err != nil {
		slog.Warn("saving character", "char", s.CharId.String(), "error", err)
	}
}

// Tick sweeps sessions: linkless ones past the grace period are
// removed, and idle connections are cut loose (which marks them
// linkless for the next sweep).
func (m *PlayerManager) Tick(ctx context.Context) error {
	now := time.Now()

	var expired, idle []*game.Session
	m.reg.ForEachSession(func(_ storage.Identifier, s *game.Session) {
		if s.Linkless {
			if now.Sub(s.LinklessAt) > m.linklessTimeout {
				expired = append(expired, s)
			}
			return
		}
		if m.idleTimeout > 0 && now.Sub(s.LastActivity) > m.idleTimeout {
			idle = append(idle, s)
		}
	})

	for _, s := range idle {
		slog.Info("session idle, disconnecting", "char", s.CharId.String())
		s.MarkLinkless()
		s.Kick()
	}

	for _, s := range expired {
		slog.Info("linkless session expired", "char", s.CharId.String())
		m.bcast.ToRoomExcept(s.Loc, fmt.Sprintf("%s fades from the world.", s.Character.Name), s.CharId)
		m.remove(s)
	}

	return nil
}
