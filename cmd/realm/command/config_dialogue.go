package command

import (
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-realm/internal/dialogue"
)

type DialogueConfig struct {
	// GeneratorURL points at a text-generation endpoint. Empty means
	// NPCs fall back to canned replies.
	GeneratorURL string `json:"generator_url,omitempty"`
	Timeout      string `json:"timeout,omitempty"`

	// PromptTemplatePath overrides the built-in prompt template.
	PromptTemplatePath string `json:"prompt_template_path,omitempty"`
}

func (c *DialogueConfig) validate() error {
	el := errors.NewErrorList()

	if c.Timeout != "" {
		_, err := time.ParseDuration(c.Timeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing timeout: %w", err))
		}
	}

	if c.PromptTemplatePath != "" {
		_, err := os.Stat(c.PromptTemplatePath)
		if err != nil {
			el.Add(fmt.Errorf("invalid prompt_template_path %q: %w", c.PromptTemplatePath, err))
		}
	}

	return el.Err()
}

func (c *DialogueConfig) buildTalker() (*dialogue.Talker, error) {
	var gen dialogue.Generator
	if c.GeneratorURL != "" {
		var timeout time.Duration
		if c.Timeout != "" {
			d, err := time.ParseDuration(c.Timeout)
			if err != nil {
				return nil, fmt.Errorf("parsing timeout: %w", err)
			}
			timeout = d
		}
		gen = dialogue.NewHTTPGenerator(c.GeneratorURL, timeout)
	}

	var tmpl string
	if c.PromptTemplatePath != "" {
		data, err := os.ReadFile(c.PromptTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("reading prompt template: %w", err)
		}
		tmpl = string(data)
	}

	return dialogue.NewTalker(gen, tmpl)
}
