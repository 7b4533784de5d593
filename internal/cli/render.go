package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/origin/internal/advisor"
)

// ChunkRenderer writes an advisor response to a terminal as it arrives.
type ChunkRenderer struct {
	writer io.Writer
	plain  bool
}

// NewChunkRenderer creates a renderer. Plain renderers emit the raw chunk
// text, markdown markers included, with no styling.
func NewChunkRenderer(writer io.Writer, plain bool) *ChunkRenderer {
	return &ChunkRenderer{writer: writer, plain: plain}
}

// Render consumes chunks until the channel closes and returns the answer
// text without labels. An error chunk is written and returned as an error.
func (r *ChunkRenderer) Render(chunks <-chan advisor.Chunk) (string, error) {
	var answer strings.Builder
	var failure error
	var writeErr error

	write := func(s string) {
		if writeErr != nil {
			return
		}
		_, writeErr = io.WriteString(r.writer, s)
	}

	for c := range chunks {
		switch c.Kind {
		case advisor.ChunkLabel:
			write(r.label(c.Text))
		case advisor.ChunkContent:
			answer.WriteString(c.Text)
			write(c.Text)
		case advisor.ChunkError:
			if failure == nil {
				failure = errors.New(c.Text)
			}
			if r.plain {
				write("\n" + c.Text + "\n")
			} else {
				write("\n" + FormatError(c.Text) + "\n")
			}
		case advisor.ChunkDone:
			write("\n")
		}
	}

	if failure != nil {
		return answer.String(), failure
	}
	if writeErr != nil {
		return answer.String(), fmt.Errorf("failed to write response: %w", writeErr)
	}
	return answer.String(), nil
}

func (r *ChunkRenderer) label(text string) string {
	if r.plain {
		return text
	}
	trailing := text[len(strings.TrimRight(text, "\n")):]
	return FormatLabel(StripEmphasis(text)) + trailing
}

// StripEmphasis removes markdown bold and underline markers and surrounding
// whitespace from a label.
func StripEmphasis(text string) string {
	text = strings.TrimSpace(text)
	for _, marker := range []string{"**", "__"} {
		if strings.HasPrefix(text, marker) && strings.HasSuffix(text, marker) && len(text) >= 2*len(marker) {
			text = text[len(marker) : len(text)-len(marker)]
		}
	}
	return strings.TrimSpace(text)
}
