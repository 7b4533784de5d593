package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/origin/internal/advisor"
)

// chunkMsg carries one chunk of the answer being streamed. closed is set
// once the channel has been drained.
type chunkMsg struct {
	chunk  advisor.Chunk
	closed bool
}

// waitForChunk reads the next chunk from an in-flight answer.
func waitForChunk(chunks <-chan advisor.Chunk) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-chunks
		if !ok {
			return chunkMsg{closed: true}
		}
		return chunkMsg{chunk: c}
	}
}
