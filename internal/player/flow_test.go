package player

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
	"github.com/pixil98/go-testutil"
)

type stubStore[T storage.ValidatingSpec] struct {
	m map[string]T
}

func (s *stubStore[T]) Save(id string, v T) error {
	s.m[id] = v
	return nil
}

func (s *stubStore[T]) Get(id string) T {
	return s.m[id]
}

func (s *stubStore[T]) GetAll() map[string]T {
	return s.m
}

func runFlow(t *testing.T, chars storage.Storer[*game.Character], input ...string) (*game.Character, string, error) {
	t.Helper()

	flow := &loginFlow{
		chars: chars,
		home:  world.Location{Zone: "keep", X: 0, Y: 0},
	}

	br := bufio.NewReader(strings.NewReader(strings.Join(input, "\n") + "\n"))
	var out bytes.Buffer
	char, err := flow.Run(br, &out)
	return char, out.String(), err
}

func TestLoginFlow_NewCharacter(t *testing.T) {
	chars := &stubStore[*game.Character]{m: map[string]*game.Character{}}

	// Classes list sorted by id: 1=cleric, 2=fighter, 3=rogue, 4=wizard.
	char, out, err := runFlow(t, chars,
		"Ayla", // name
		"y",    // confirm
		"hunter2", "hunter2", // password
		"1", // class
		"y", // keep scores
	)
	if err != nil {
		t.Fatalf("running flow: %v", err)
	}

	testutil.AssertEqual(t, "name", char.Name, "Ayla")
	testutil.AssertEqual(t, "class", char.Class, "cleric")
	testutil.AssertEqual(t, "level", char.Level, 1)
	testutil.AssertEqual(t, "home", char.Home, world.Location{Zone: "keep", X: 0, Y: 0})
	testutil.AssertEqual(t, "knows cure wounds", char.KnowsSpell("cure-wounds"), true)

	if !char.CheckPassword("hunter2") {
		t.Error("expected the password to verify against its hash")
	}
	if char.CheckPassword("wrong") {
		t.Error("expected a wrong password to fail")
	}

	if !strings.Contains(out, "What is your calling?") {
		t.Error("expected the class prompt")
	}
	for _, name := range game.AbilityNames {
		if _, ok := char.Abilities[name]; !ok {
			t.Errorf("missing ability score %q", name)
		}
	}
}

func TestLoginFlow_ExistingCharacter(t *testing.T) {
	hash, err := game.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	existing := game.NewCharacter("Ayla", hash, "fighter",
		map[string]int{"str": 16, "dex": 14, "con": 12, "int": 10, "wis": 10, "cha": 8},
		world.Location{Zone: "keep", X: 0, Y: 0})
	chars := &stubStore[*game.Character]{m: map[string]*game.Character{"ayla": existing}}

	char, _, err := runFlow(t, chars, "Ayla", "hunter2")
	if err != nil {
		t.Fatalf("running flow: %v", err)
	}
	if char != existing {
		t.Error("expected the stored character to be returned")
	}
}

func TestLoginFlow_WrongPasswordLocksOut(t *testing.T) {
	hash, err := game.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	existing := game.NewCharacter("Ayla", hash, "fighter",
		map[string]int{"str": 16, "dex": 14, "con": 12, "int": 10, "wis": 10, "cha": 8},
		world.Location{Zone: "keep", X: 0, Y: 0})
	chars := &stubStore[*game.Character]{m: map[string]*game.Character{"ayla": existing}}

	_, out, err := runFlow(t, chars, "Ayla", "nope", "wrong", "bad")
	if err == nil {
		t.Fatal("expected an error after too many tries")
	}
	if !strings.Contains(out, "Wrong password.") {
		t.Error("expected the rejection message")
	}
}
