package dialogue

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-realm/internal/combat"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/storage"
	"github.com/pixil98/go-realm/internal/world"
	"github.com/pixil98/go-testutil"
)

type fakeGen struct {
	prompts []string
	reply   string
	fail    bool
}

func (g *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.fail {
		return "", fmt.Errorf("generator unavailable")
	}
	return g.reply, nil
}

type fakeSubscriber struct{}

func (fakeSubscriber) Subscribe(string, func([]byte)) (func(), error) {
	return func() {}, nil
}

func testSession(t *testing.T) *game.Session {
	t.Helper()

	graph, err := world.NewGraph(map[string]*world.Zone{
		"keep": {Name: "The Keep", Width: 1, Height: 1, Rows: [][]world.Room{{{Name: "Hall"}}}},
	}, nil)
	if err != nil {
		t.Fatalf("building graph: %v", err)
	}
	reg := game.NewRegistry(fakeSubscriber{}, graph, 4*time.Second)

	char := game.NewCharacter("Ayla", "hash", "fighter",
		map[string]int{"str": 16, "dex": 14, "con": 12, "int": 10, "wis": 10, "cha": 8},
		world.Location{Zone: "keep", X: 0, Y: 0})
	s, err := reg.AddSession(storage.Identifier("ayla"), char, make(chan []byte, 1), char.Home)
	if err != nil {
		t.Fatalf("adding session: %v", err)
	}
	return s
}

func innkeeper() *combat.Creature {
	spec := &combat.CreatureSpec{
		Name: "innkeeper", Description: "A stout woman polishing a mug.",
		HP: "10", AC: 10, Damage: "1d4",
		Persona: &combat.Persona{
			Voice: "Warm but guarded; speaks in short sentences.",
			Secrets: []combat.Secret{
				{Threshold: 2, Fact: "The cellar door is never locked."},
				{Threshold: 4, Fact: "The mayor pays for silence about the crypt."},
			},
		},
	}
	c := combat.NewCreature("innkeeper", spec, world.Location{Zone: "keep", X: 0, Y: 0})
	return c
}

func TestTalker_SecretsUnlockByExchangeCount(t *testing.T) {
	gen := &fakeGen{reply: "Aye, welcome."}
	talker, err := NewTalker(gen, "")
	if err != nil {
		t.Fatalf("building talker: %v", err)
	}

	s := testSession(t)
	npc := innkeeper()

	// First exchange: nothing unlocked yet.
	ex, err := talker.Talk(t.Context(), s, npc, "Hello!")
	if err != nil {
		t.Fatalf("talking: %v", err)
	}
	testutil.AssertEqual(t, "no secrets on first exchange", ex.Revealed, 0)
	if !strings.Contains(gen.prompts[0], "deflect politely") {
		t.Errorf("expected deflection instruction, got %q", gen.prompts[0])
	}

	// Second exchange crosses the first threshold.
	ex, err = talker.Talk(t.Context(), s, npc, "Heard anything odd?")
	if err != nil {
		t.Fatalf("talking: %v", err)
	}
	testutil.AssertEqual(t, "first secret unlocked", ex.Revealed, 1)
	if !strings.Contains(gen.prompts[1], "The cellar door is never locked.") {
		t.Errorf("expected unlocked secret in prompt, got %q", gen.prompts[1])
	}
	if strings.Contains(gen.prompts[1], "crypt") {
		t.Error("second secret leaked before its threshold")
	}

	// Two more exchanges unlock the second.
	_, _ = talker.Talk(t.Context(), s, npc, "Go on...")
	ex, err = talker.Talk(t.Context(), s, npc, "And the mayor?")
	if err != nil {
		t.Fatalf("talking: %v", err)
	}
	testutil.AssertEqual(t, "both secrets unlocked", ex.Revealed, 2)
}

func TestTalker_RollbackOnGenerationFailure(t *testing.T) {
	gen := &fakeGen{fail: true}
	talker, err := NewTalker(gen, "")
	if err != nil {
		t.Fatalf("building talker: %v", err)
	}

	s := testSession(t)
	npc := innkeeper()

	ex, err := talker.Talk(t.Context(), s, npc, "Hello!")
	if err != nil {
		t.Fatalf("talking: %v", err)
	}
	if ex.Reply == "" {
		t.Error("expected a canned fallback reply")
	}

	// The failed exchange must not count toward confidences.
	testutil.AssertEqual(t, "counter rolled back", s.Conversations(npc.TemplateId), 0)
}

func TestTalker_NilGeneratorUsesCannedReplies(t *testing.T) {
	talker, err := NewTalker(nil, "")
	if err != nil {
		t.Fatalf("building talker: %v", err)
	}

	s := testSession(t)
	npc := innkeeper()

	ex, err := talker.Talk(t.Context(), s, npc, "Hello!")
	if err != nil {
		t.Fatalf("talking: %v", err)
	}
	if ex.Reply == "" {
		t.Error("expected a canned reply")
	}
	// Canned exchanges still count: the NPC warms up even offline.
	testutil.AssertEqual(t, "counter advanced", s.Conversations(npc.TemplateId), 1)
}

func TestTalker_RejectsPersonalessCreature(t *testing.T) {
	talker, err := NewTalker(nil, "")
	if err != nil {
		t.Fatalf("building talker: %v", err)
	}

	spec := &combat.CreatureSpec{Name: "giant rat", HP: "6", Damage: "1d4"}
	rat := combat.NewCreature("giant-rat", spec, world.Location{Zone: "keep", X: 0, Y: 0})

	_, err = talker.Talk(t.Context(), testSession(t), rat, "Hello?")
	if err == nil {
		t.Error("expected an error talking to a personaless creature")
	}
}

func TestHTTPGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		_, _ = w.Write([]byte(`{"reply": "Well met, traveler."}`))
	}))
	defer srv.Close()

	gen := NewHTTPGenerator(srv.URL, time.Second)
	reply, err := gen.Generate(t.Context(), "say hello")
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	testutil.AssertEqual(t, "reply", reply, "Well met, traveler.")
}

func TestHTTPGenerator_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	gen := NewHTTPGenerator(srv.URL, time.Second)
	_, err := gen.Generate(t.Context(), "say hello")
	if err == nil {
		t.Error("expected an error on non-200 status")
	}
}
