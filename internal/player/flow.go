package player

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

const (
	defaultSelectorRowLength = 80
	defaultSelectorRowCount  = 5
)

type Selectable interface {
	Selector() string
}

type selector[T Selectable] struct {
	options []option[T]
	output  []string
}

type option[T Selectable] struct {
	id  string
	val T
}

func NewSelector[T Selectable](v map[string]T) *selector[T] {
	s := &selector[T]{
		options: []option[T]{},
	}

	for id, val := range v {
		s.options = append(s.options, option[T]{id: id, val: val})
	}
	sort.Slice(s.options, func(i, j int) bool { return s.options[i].id < s.options[j].id })
	s.build()

	return s
}

func (s *selector[T]) Prompt(br *bufio.Reader, w io.Writer, prompt string) (string, error) {
	w.Write([]byte(fmt.Sprintf("%s\n", prompt)))

	for _, str := range s.output {
		if len(str) > 0 {
			w.Write([]byte(fmt.Sprintf("%s\n", str)))
		}
	}

	selection, err := Prompt(br, w, "Make your selection: ", WithValidator(
		func(str string) (bool, string) {
			i, err := strconv.Atoi(str)
			if err != nil {
				return false, "Invalid selection!\n"
			}

			if s.Select(i) == "" {
				return false, "Invalid selection!\n"
			}

			return true, ""
		},
	))
	if err != nil {
		return "", err
	}

	i, err := strconv.Atoi(selection)
	if err != nil {
		return "", err
	}

	return s.Select(i), nil
}

func (s *selector[T]) Select(i int) string {
	if i < 1 || i > len(s.options) {
		return ""
	}
	return s.options[i-1].id
}

func (s *selector[T]) build() {
	// Calculate column width
	colWidth := 1
	for _, v := range s.options {
		l := len(v.val.Selector()) + 7 // Plus 7 for number and spacing (nn. <val>  )
		if l > colWidth {
			colWidth = l
		}
	}

	// Figure out the number of columns and rows. We want to fill columns
	// first, left to right, but we might need more rows than the default
	// number if there isn't enough space.
	numVals := len(s.options)
	numCols := defaultSelectorRowLength / colWidth
	if numCols < 1 {
		numCols = 1
	}
	numRows := numVals / numCols
	if numRows < defaultSelectorRowCount {
		numRows = defaultSelectorRowCount
	}

	count := 0
	rows := make([]string, numRows)
	for _, v := range s.options {
		rows[count%numRows] = rows[count%numRows] + fmt.Sprintf("%2d. %-*s  ", count+1, colWidth-5, v.val.Selector())
		count++
	}

	s.output = rows
}

type promptValidator func(string) (bool, string)

type promptConfig struct {
	tries     int
	validator promptValidator
}

type promptOption func(*promptConfig)

func WithValidator(v promptValidator) promptOption {
	return func(cfg *promptConfig) {
		cfg.validator = v
	}
}

func WithMaxTries(i int) promptOption {
	return func(cfg *promptConfig) {
		cfg.tries = i
	}
}

// Prompt writes the prompt and reads one line. The caller supplies the
// buffered reader so queued input survives across prompts.
func Prompt(br *bufio.Reader, w io.Writer, prompt string, opts ...promptOption) (string, error) {
	config := &promptConfig{}
	for _, opt := range opts {
		opt(config)
	}

	tries := 0
	for {
		_, err := w.Write([]byte(prompt))
		if err != nil {
			return "", err
		}

		input, err := br.ReadString('\n')
		if err != nil {
			return "", err
		}
		input = strings.TrimSpace(input)

		if config.validator != nil {
			ok, msg := config.validator(input)
			if !ok {
				w.Write([]byte(msg))

				tries++
				if config.tries > 0 && config.tries == tries {
					w.Write([]byte("Too many tries.\n"))
					return "", fmt.Errorf("too many tries")
				}

				continue
			}
		}

		return input, nil
	}
}

func PromptYN(br *bufio.Reader, w io.Writer, prompt string) (bool, error) {
	str, err := Prompt(br, w, prompt, WithValidator(
		func(str string) (bool, string) {
			switch strings.ToLower(str) {
			case "y", "yes", "n", "no":
				return true, ""
			default:
				return false, "Enter 'yes' or 'no'.\n"
			}
		},
	))
	if err != nil {
		return false, err
	}

	switch strings.ToLower(str) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
