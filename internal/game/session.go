package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
)

// RoomSubject is the message subject every occupant of a room
// subscribes to. Room-scoped events always publish to an explicit
// location, never to "wherever the actor is".
func RoomSubject(loc world.Location) string {
	return fmt.Sprintf("room.%s.%d.%d", loc.Zone, loc.X, loc.Y)
}

// SessionSubject is the private subject for one participant.
func SessionSubject(id storage.Identifier) string {
	return fmt.Sprintf("player-%s", id)
}

// Subscriber provides the ability to subscribe to message subjects.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
}

// Session holds all mutable state for an active participant: where
// they are, what affects them, and how fast they may act. The
// persisted Character sheet travels with the session and is flushed to
// the store on save points.
type Session struct {
	subscriber Subscriber
	msgs       chan []byte

	CharId    storage.Identifier
	Character *Character

	// Loc is the participant's current room.
	Loc world.Location

	// Subscriptions, keyed by subject.
	subs map[string]func()

	// Session flags.
	Quit         bool
	InCombat     bool
	LastActivity time.Time

	// Connection management: closed to signal the active Play()
	// goroutine to exit.
	done chan struct{}

	// Linkless state: connection dropped but the participant remains
	// in the world.
	Linkless   bool
	LinklessAt time.Time

	mu         sync.Mutex
	effects    []Effect
	gate       *ActionGate
	spellReady map[string]time.Time
	searched   map[string]bool
	talks      map[string]int
}

// newSession is only called by the Registry, which owns session
// lifecycle.
func newSession(sub Subscriber, charId storage.Identifier, char *Character, msgs chan []byte, loc world.Location, baseCooldown time.Duration) *Session {
	return &Session{
		subscriber:   sub,
		msgs:         msgs,
		CharId:       charId,
		Character:    char,
		Loc:          loc,
		subs:         make(map[string]func()),
		LastActivity: time.Now(),
		done:         make(chan struct{}),
		gate:         NewActionGate(baseCooldown),
		spellReady:   make(map[string]time.Time),
		searched:     make(map[string]bool),
		talks:        make(map[string]int),
	}
}

// Gate returns the session's action gate.
func (s *Session) Gate() *ActionGate {
	return s.gate
}

// Effects returns the participant's active effects, pruning any that
// have expired.
func (s *Session) Effects(now time.Time) []Effect {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.effects = PruneEffects(s.effects, now)
	return append([]Effect(nil), s.effects...)
}

// AddEffect applies an effect, replacing by key unless stackable.
func (s *Session) AddEffect(e Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effects = UpsertEffect(s.effects, e)
}

// ClearEffects removes every effect, expired or not.
func (s *Session) ClearEffects() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effects = nil
}

// Derive resolves the participant's effective stat block.
func (s *Session) Derive(weapon *Weapon, now time.Time) Derived {
	return DeriveCharacter(s.Character, weapon, s.Effects(now), now)
}

// SpellReady reports whether a spell's private cooldown has elapsed.
// When it has not, the returned duration is the remaining wait.
func (s *Session) SpellReady(id string, now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ready, ok := s.spellReady[id]
	if !ok || !now.Before(ready) {
		return 0, true
	}
	return ready.Sub(now), false
}

// StartSpellCooldown begins a spell's private cooldown.
func (s *Session) StartSpellCooldown(id string, now time.Time, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spellReady[id] = now.Add(d)
}

// MarkSearched records that this participant has attempted the search
// in a room. Each participant gets one attempt per room.
func (s *Session) MarkSearched(loc world.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searched[loc.String()] = true
}

// HasSearched reports whether this participant already attempted the
// room's search.
func (s *Session) HasSearched(loc world.Location) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searched[loc.String()]
}

// Conversations returns how many exchanges this participant has had
// with the named NPC.
func (s *Session) Conversations(npc string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.talks[npc]
}

// RecordConversation increments the exchange counter and returns the
// new count.
func (s *Session) RecordConversation(npc string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.talks[npc]++
	return s.talks[npc]
}

// RollbackConversation undoes a recorded exchange after a generation
// failure, so a failed reply doesn't burn progress toward an NPC's
// confidences.
func (s *Session) RollbackConversation(npc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.talks[npc] > 0 {
		s.talks[npc]--
	}
}

// ApplyDamage reduces current HP, flooring at zero. It returns the new
// HP so callers can detect defeat without a second lock.
func (s *Session) ApplyDamage(amount int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Character.HP -= amount
	if s.Character.HP < 0 {
		s.Character.HP = 0
	}
	return s.Character.HP
}

// Heal restores HP up to the maximum and returns the amount actually
// restored.
func (s *Session) Heal(amount int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.Character.HP
	s.Character.HP += amount
	if s.Character.HP > s.Character.MaxHP {
		s.Character.HP = s.Character.MaxHP
	}
	return s.Character.HP - before
}

// Flags returns display labels for the session's current state.
func (s *Session) Flags() []string {
	var flags []string
	if s.InCombat {
		flags = append(flags, "fighting")
	}
	if s.Linkless {
		flags = append(flags, "linkless")
	}
	return flags
}

// Done returns the channel that is closed when this session is evicted
// by a reconnection.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Subscribe adds a new subscription.
func (s *Session) Subscribe(subject string) error {
	if s.subscriber == nil {
		return fmt.Errorf("subscriber is nil")
	}

	unsub, err := s.subscriber.Subscribe(subject, func(data []byte) {
		s.msgs <- data
	})

	// If we somehow are subscribing to a subject we already think we
	// have, unsubscribe from the existing one.
	if old, ok := s.subs[subject]; ok {
		old()
	}

	if err != nil {
		return fmt.Errorf("subscribing to subject '%s': %w", subject, err)
	}
	s.subs[subject] = unsub
	return nil
}

// Unsubscribe removes a subscription by subject.
func (s *Session) Unsubscribe(subject string) {
	if unsub, ok := s.subs[subject]; ok {
		unsub()
		delete(s.subs, subject)
	}
}

// UnsubscribeAll removes all subscriptions.
func (s *Session) UnsubscribeAll() {
	for subject, unsub := range s.subs {
		unsub()
		delete(s.subs, subject)
	}
}

// Kick closes the done channel, signaling the active Play() goroutine
// to exit. It is safe to call multiple times; subsequent calls are
// no-ops.
func (s *Session) Kick() {
	select {
	case <-s.done:
		// already closed
	default:
		close(s.done)
	}
}

// Reattach swaps the msgs channel and done channel for a reconnecting
// participant. It unsubscribes all old subscriptions (their closures
// reference the old msgs channel), clears the linkless flag, and
// creates a fresh done channel. The caller re-subscribes afterward.
// Effects, cooldowns, and position survive the swap untouched.
func (s *Session) Reattach(msgs chan []byte) {
	s.UnsubscribeAll()
	s.msgs = msgs
	s.done = make(chan struct{})
	s.Linkless = false
	s.LinklessAt = time.Time{}
	s.LastActivity = time.Now()
}

// MarkLinkless sets the session linkless and unsubscribes everything
// to prevent channel fill-up while there is no active connection.
func (s *Session) MarkLinkless() {
	s.Linkless = true
	s.LinklessAt = time.Now()
	s.UnsubscribeAll()
}

// SaveCharacter persists the character's current session state to the
// character store.
func (s *Session) SaveCharacter(chars storage.Storer[*Character]) error {
	s.Character.LastLocation = s.Loc
	return chars.Save(string(s.CharId), s.Character)
}
