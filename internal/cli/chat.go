package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/origin/internal/advisor"
	"github.com/Veraticus/origin/internal/model"
)

// Responder produces a streamed advisor answer.
type Responder interface {
	Respond(ctx context.Context, req advisor.Request) <-chan advisor.Chunk
}

// exitCommands end a plain chat session.
var exitCommands = map[string]bool{"exit": true, "quit": true, "/exit": true, "/quit": true}

// PlainChat is a line-oriented conversation loop for terminals without a
// full-screen UI, or for piped input.
type PlainChat struct {
	responder Responder
	reader    *NonBlockingReader
	renderer  *ChunkRenderer
	out       io.Writer
	base      advisor.Request
	history   []model.Message
}

// NewPlainChat creates a chat loop. base carries the financial and survey
// context sent with every turn.
func NewPlainChat(responder Responder, in io.Reader, out io.Writer, base advisor.Request, plain bool) *PlainChat {
	return &PlainChat{
		responder: responder,
		reader:    NewNonBlockingReader(in),
		renderer:  NewChunkRenderer(out, plain),
		out:       out,
		base:      base,
	}
}

// Run reads questions until input ends, an exit command is entered, or ctx
// is canceled.
func (c *PlainChat) Run(ctx context.Context) error {
	for {
		if _, err := fmt.Fprint(c.out, FormatPrompt("You")); err != nil {
			return fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := c.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrInputCancelled) {
				_, _ = fmt.Fprintln(c.out)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			return nil
		}

		if err := c.Turn(ctx, line); err != nil && ctx.Err() != nil {
			return nil
		}
	}
}

// Turn sends one question with the conversation so far and records the
// answer. Failed turns are not added to the history.
func (c *PlainChat) Turn(ctx context.Context, question string) error {
	req := c.base
	req.Messages = append(append([]model.Message{}, c.history...), model.UserMessage(question))

	answer, err := c.renderer.Render(c.responder.Respond(ctx, req))
	if err != nil {
		return err
	}
	c.history = append(c.history,
		model.UserMessage(question),
		model.Message{Role: model.RoleAssistant, Content: answer},
	)
	return nil
}

// History returns the recorded conversation.
func (c *PlainChat) History() []model.Message {
	return append([]model.Message{}, c.history...)
}
