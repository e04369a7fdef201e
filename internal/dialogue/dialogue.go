package dialogue

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pixil98/go-realm/internal/combat"
	"github.com/pixil98/go-realm/internal/game"
)

// Generator produces an NPC's reply to a participant's line. A nil or
// failing generator falls back to canned responses; a failed exchange
// never counts toward an NPC's confidences.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// defaultPromptTemplate builds the generation prompt from the NPC's
// persona and the conversation so far.
const defaultPromptTemplate = `You are {{ .Name }}, a character in a fantasy world.
{{ .Voice }}

{{ if .Facts -}}
You may reveal the following, and nothing beyond it:
{{ range .Facts }}- {{ . }}
{{ end -}}
{{ else -}}
You know nothing worth sharing yet; deflect politely.
{{ end }}
{{ title .Speaker }} says to you: "{{ .Line }}"

Reply in one or two sentences, in character.`

// promptData is what the prompt template sees.
type promptData struct {
	Name    string
	Voice   string
	Facts   []string
	Speaker string
	Line    string
}

// Exchange is one resolved conversation turn.
type Exchange struct {
	Reply string

	// Revealed counts the secrets the NPC was allowed to draw on this
	// turn.
	Revealed int
}

// Talker runs conversations with persona-bearing creatures. Each
// participant has a per-NPC exchange counter; secrets unlock when the
// counter reaches their threshold, so an NPC opens up the longer you
// keep talking.
type Talker struct {
	gen  Generator
	tmpl *template.Template
}

// NewTalker builds a Talker. Template is the prompt template; empty
// means the default. The generator may be nil, in which case every
// reply is canned.
func NewTalker(gen Generator, tmplStr string) (*Talker, error) {
	if tmplStr == "" {
		tmplStr = defaultPromptTemplate
	}
	tmpl, err := template.New("prompt").Funcs(sprig.TxtFuncMap()).Parse(tmplStr)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template: %w", err)
	}
	return &Talker{gen: gen, tmpl: tmpl}, nil
}

// Talk resolves one exchange between a participant and an NPC. The
// exchange counter is incremented first so thresholds count this very
// turn; if generation fails the counter is rolled back and a canned
// line returned, so progress toward confidences is only ever paid for
// real replies.
func (t *Talker) Talk(ctx context.Context, s *game.Session, npc *combat.Creature, line string) (*Exchange, error) {
	persona := npc.Spec.Persona
	if persona == nil {
		return nil, fmt.Errorf("creature %q has no persona", npc.Name())
	}

	count := s.RecordConversation(npc.TemplateId)

	var facts []string
	for _, secret := range persona.Secrets {
		if count >= secret.Threshold {
			facts = append(facts, secret.Fact)
		}
	}

	if t.gen == nil {
		return &Exchange{Reply: cannedReply(npc.Name(), facts), Revealed: len(facts)}, nil
	}

	prompt, err := t.renderPrompt(promptData{
		Name:    npc.Name(),
		Voice:   persona.Voice,
		Facts:   facts,
		Speaker: s.Character.Name,
		Line:    line,
	})
	if err != nil {
		s.RollbackConversation(npc.TemplateId)
		return nil, err
	}

	reply, err := t.gen.Generate(ctx, prompt)
	if err != nil {
		s.RollbackConversation(npc.TemplateId)
		return &Exchange{Reply: cannedReply(npc.Name(), nil)}, nil
	}

	return &Exchange{Reply: strings.TrimSpace(reply), Revealed: len(facts)}, nil
}

func (t *Talker) renderPrompt(data promptData) (string, error) {
	var buf bytes.Buffer
	err := t.tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}
	return buf.String(), nil
}

// cannedReply is the fallback when no generator is configured or a
// generation attempt fails.
func cannedReply(name string, facts []string) string {
	if len(facts) > 0 {
		return fmt.Sprintf("The %s leans closer. \"%s\"", name, facts[len(facts)-1])
	}
	return fmt.Sprintf("The %s grunts noncommittally.", name)
}
