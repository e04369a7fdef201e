package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pixil98/go-realm/internal/commands"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/storage"
)

// errSessionEnded signals that the session was ended from outside the
// connection: a reconnect took it over, or the idle sweep timed it out.
// The connection must not touch the session on its way out.
var errSessionEnded = errors.New("session ended")

// Player drives one connection's play loop against its world session.
// Input comes through the buffered reader shared with the login flow so
// no queued bytes are lost at the handoff.
type Player struct {
	in      io.Reader
	out     io.Writer
	charId  storage.Identifier
	reg     *game.Registry
	handler *commands.Handler

	msgs chan []byte
	done <-chan struct{}
}

func (p *Player) Play(ctx context.Context) error {
	// Read input lines into a channel so the select below can also
	// watch broadcast traffic and the done signal.
	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(p.in)
		for scanner.Scan() {
			inputChan <- scanner.Text()
		}
		inputErrChan <- scanner.Err()
		close(inputChan)
	}()

	// Show the player their current room on login.
	err := p.exec(ctx, "look")
	if err != nil {
		return err
	}
	err = p.prompt()
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-p.done:
			s := p.reg.GetSession(p.charId)
			var msg string
			if s != nil && s.Linkless {
				msg = "\nDisconnected for inactivity."
			} else {
				msg = "\nAnother connection has taken over your session."
			}
			if err := p.writeLine(msg); err != nil {
				slog.Warn("writing disconnect message", "char", p.charId.String(), "error", err)
			}
			return errSessionEnded

		case msg := <-p.msgs:
			err = p.writeLine("\n" + string(msg))
			if err != nil {
				return err
			}
			err = p.prompt()
			if err != nil {
				return err
			}

		case line, ok := <-inputChan:
			if !ok {
				// Connection lost. The manager decides whether the
				// session lingers linkless or is torn down.
				select {
				case err := <-inputErrChan:
					return err
				default:
					return nil
				}
			}

			line = strings.TrimSpace(line)
			if line != "" {
				err = p.exec(ctx, line)
				if err != nil {
					return err
				}
			}

			s := p.reg.GetSession(p.charId)
			if s == nil {
				return fmt.Errorf("session not found for %s", p.charId)
			}
			if s.Quit {
				if err := p.writeLine("Goodbye!"); err != nil {
					slog.Warn("writing goodbye", "char", p.charId.String(), "error", err)
				}
				return nil
			}

			err = p.prompt()
			if err != nil {
				return err
			}
		}
	}
}

// exec runs one command. UserErrors are shown to the player; anything
// else tears the connection down.
func (p *Player) exec(ctx context.Context, line string) error {
	err := p.handler.Exec(ctx, p.charId, line)
	if err != nil {
		var userErr *commands.UserError
		if errors.As(err, &userErr) {
			return p.writeLine(userErr.Message)
		}
		return fmt.Errorf("command execution failed: %w", err)
	}
	return nil
}

func (p *Player) prompt() error {
	prompt := "> "
	if s := p.reg.GetSession(p.charId); s != nil {
		prompt = fmt.Sprintf("[%d/%dHP] > ", s.Character.HP, s.Character.MaxHP)
	}
	_, err := p.out.Write([]byte(prompt))
	return err
}

func (p *Player) writeLine(msg string) error {
	_, err := p.out.Write([]byte(msg + "\n\n"))
	return err
}
