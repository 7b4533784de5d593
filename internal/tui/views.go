package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/origin/internal/advisor"
	"github.com/Veraticus/origin/internal/cli"
)

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.theme.Title.Render(cli.OriginIcon + " Origin"),
		m.viewport.View(),
		m.renderStatus(),
		m.theme.Input.Render(m.input.View()),
		m.help.View(m.keymap),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatus() string {
	if !m.streaming {
		return m.theme.Status.Render(" ")
	}
	return m.spinner.View() + m.theme.Status.Render(" thinking... (esc to stop)")
}

func (m Model) renderTranscript() string {
	if len(m.turns) == 0 {
		return m.theme.Status.Render("Ask a question about your finances to get started.")
	}

	wrap := lipgloss.NewStyle().Width(max(m.width, 20))
	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.theme.User.Render("You: "))
		b.WriteString(wrap.Render(t.question))
		b.WriteString("\n")

		var content strings.Builder
		flush := func() {
			if content.Len() == 0 {
				return
			}
			b.WriteString(m.theme.Assistant.Inherit(wrap).Render(content.String()))
			b.WriteString("\n")
			content.Reset()
		}
		for _, p := range t.parts {
			switch p.kind {
			case advisor.ChunkLabel:
				flush()
				b.WriteString(m.theme.Label.Render(cli.StripEmphasis(p.text)))
				b.WriteString("\n")
			case advisor.ChunkContent:
				content.WriteString(p.text)
			case advisor.ChunkError:
				flush()
				b.WriteString(m.theme.Error.Render(p.text))
				b.WriteString("\n")
			}
		}
		flush()
		if !t.done && !t.failed && !m.streamingTurn(i) {
			b.WriteString(m.theme.Status.Render("(stopped)"))
		}
	}
	return b.String()
}

func (m Model) streamingTurn(i int) bool {
	return m.streaming && i == len(m.turns)-1
}
