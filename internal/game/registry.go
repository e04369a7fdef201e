package game

import (
	"context"
	"sync"
	"time"

	"github.com/pixil98/go-realm/internal/loot"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
)

// Registry is the single source of truth for all mutable participant
// state: active sessions, drops lying in rooms, and which one-time
// room caches have already been recovered. All access goes through its
// methods to keep it thread-safe.
type Registry struct {
	mu         sync.RWMutex
	subscriber Subscriber
	graph      *world.Graph

	sessions map[storage.Identifier]*Session

	// drops holds unclaimed loot, keyed by location string.
	drops map[string][]loot.Entry

	// harvested marks rooms whose search cache has been recovered.
	// One recovery per room for the lifetime of the process, no
	// matter who finds it.
	harvested map[string]bool

	baseCooldown time.Duration
}

// NewRegistry creates an empty registry over the world graph.
func NewRegistry(sub Subscriber, graph *world.Graph, baseCooldown time.Duration) *Registry {
	return &Registry{
		subscriber:   sub,
		graph:        graph,
		sessions:     make(map[storage.Identifier]*Session),
		drops:        make(map[string][]loot.Entry),
		harvested:    make(map[string]bool),
		baseCooldown: baseCooldown,
	}
}

// Graph returns the world graph the registry operates over.
func (r *Registry) Graph() *world.Graph {
	return r.graph
}

// GetSession returns the session for a character, or nil.
func (r *Registry) GetSession(charId storage.Identifier) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[charId]
}

// AddSession registers a participant in the world at the given
// location and subscribes them to its room subject.
func (r *Registry) AddSession(charId storage.Identifier, char *Character, msgs chan []byte, loc world.Location) (*Session, error) {
	r.mu.Lock()
	if _, exists := r.sessions[charId]; exists {
		r.mu.Unlock()
		return nil, ErrSessionExists
	}

	s := newSession(r.subscriber, charId, char, msgs, loc, r.baseCooldown)
	r.sessions[charId] = s
	r.mu.Unlock()

	err := s.Subscribe(RoomSubject(loc))
	if err != nil {
		return nil, err
	}
	err = s.Subscribe(SessionSubject(charId))
	if err != nil {
		return nil, err
	}

	return s, nil
}

// RemoveSession drops a participant from the world and tears down
// their subscriptions.
func (r *Registry) RemoveSession(charId storage.Identifier) error {
	r.mu.Lock()
	s, exists := r.sessions[charId]
	if !exists {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(r.sessions, charId)
	r.mu.Unlock()

	s.UnsubscribeAll()
	return nil
}

// MoveSession relocates a participant and swaps their room
// subscription to the destination.
func (r *Registry) MoveSession(s *Session, to world.Location) error {
	r.mu.Lock()
	from := s.Loc
	s.Loc = to
	r.mu.Unlock()

	s.Unsubscribe(RoomSubject(from))
	return s.Subscribe(RoomSubject(to))
}

// Respawn returns a defeated participant to their home location with
// full HP and no lingering effects.
func (r *Registry) Respawn(s *Session) error {
	s.ClearEffects()
	s.mu.Lock()
	s.Character.HP = s.Character.MaxHP
	s.mu.Unlock()
	s.InCombat = false

	return r.MoveSession(s, s.Character.Home)
}

// SessionsAt returns every session currently in the room.
func (r *Registry) SessionsAt(loc world.Location) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Session
	for _, s := range r.sessions {
		if s.Loc == loc {
			out = append(out, s)
		}
	}
	return out
}

// FindSessionAt looks up a co-located session by character name.
func (r *Registry) FindSessionAt(loc world.Location, name string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sessions {
		if s.Loc == loc && s.Character.MatchName(name) {
			return s
		}
	}
	return nil
}

// ForEachSession calls fn for each session while holding the lock.
func (r *Registry) ForEachSession(fn func(storage.Identifier, *Session)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		fn(id, s)
	}
}

// MarkSessionActive resets the participant's idle timer.
func (r *Registry) MarkSessionActive(charId storage.Identifier) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[charId]; ok {
		s.LastActivity = time.Now()
	}
}

// AddDrops places loot entries in a room for anyone to claim.
func (r *Registry) AddDrops(loc world.Location, entries ...loot.Entry) {
	if len(entries) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := loc.String()
	r.drops[key] = append(r.drops[key], entries...)
}

// DropsAt returns a copy of the unclaimed loot in a room.
func (r *Registry) DropsAt(loc world.Location) []loot.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]loot.Entry(nil), r.drops[loc.String()]...)
}

// TakeDrop claims one entry by id. The second return is false when the
// entry is gone, e.g. another participant claimed it first.
func (r *Registry) TakeDrop(loc world.Location, id string) (loot.Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := loc.String()
	for i, entry := range r.drops[key] {
		if entry.ID == id {
			r.drops[key] = append(r.drops[key][:i], r.drops[key][i+1:]...)
			if len(r.drops[key]) == 0 {
				delete(r.drops, key)
			}
			return entry, true
		}
	}
	return loot.Entry{}, false
}

// TakeAllDrops claims everything in the room.
func (r *Registry) TakeAllDrops(loc world.Location) []loot.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := loc.String()
	entries := r.drops[key]
	delete(r.drops, key)
	return entries
}

// TryHarvest marks a room's search cache as recovered. It returns
// false if someone already recovered it.
func (r *Registry) TryHarvest(loc world.Location) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := loc.String()
	if r.harvested[key] {
		return false
	}
	r.harvested[key] = true
	return true
}

// Harvested reports whether a room's cache is already gone.
func (r *Registry) Harvested(loc world.Location) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.harvested[loc.String()]
}

// Tick regenerates out-of-combat participants one point per tick.
func (r *Registry) Tick(ctx context.Context) error {
	r.ForEachSession(func(_ storage.Identifier, s *Session) {
		if !s.InCombat && s.Character.HP > 0 && s.Character.HP < s.Character.MaxHP {
			s.Heal(1)
		}
	})
	return nil
}
