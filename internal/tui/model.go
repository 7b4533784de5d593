// Package tui implements the full-screen chat interface.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/origin/internal/advisor"
	"github.com/Veraticus/origin/internal/model"
	"github.com/Veraticus/origin/internal/tui/themes"
)

const (
	inputHeight = 3
	// title, status and help lines plus the input border.
	chromeHeight = 5
)

// part is one rendered piece of an answer, in arrival order.
type part struct {
	text string
	kind advisor.ChunkKind
}

// turn is one question and the answer streamed for it.
type turn struct {
	question string
	parts    []part
	done     bool
	failed   bool
}

func (t turn) answer() string {
	var b strings.Builder
	for _, p := range t.parts {
		if p.kind == advisor.ChunkContent {
			b.WriteString(p.text)
		}
	}
	return b.String()
}

// Model holds the chat TUI state.
type Model struct {
	ctx       context.Context
	stream    <-chan advisor.Chunk
	cancel    context.CancelFunc
	config    Config
	theme     themes.Theme
	keymap    KeyMap
	help      help.Model
	input     textarea.Model
	viewport  viewport.Model
	spinner   spinner.Model
	turns     []turn
	history   []model.Message
	width     int
	height    int
	streaming bool
	quitting  bool
}

func newModel(ctx context.Context, cfg Config) Model {
	input := textarea.New()
	input.Placeholder = "Ask about your spending..."
	input.ShowLineNumbers = false
	input.CharLimit = 2000
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Focus()

	m := Model{
		ctx:      ctx,
		config:   cfg,
		theme:    cfg.Theme,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		input:    input,
		viewport: viewport.New(cfg.Width, cfg.Height),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.resize(cfg.Width, cfg.Height)
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case chunkMsg:
		return m.handleChunk(msg)

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.stop()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Cancel):
		m.stop()
		return m, nil

	case key.Matches(msg, m.keymap.Clear):
		if !m.streaming {
			m.turns = nil
			m.history = nil
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keymap.Send):
		return m.send()

	case key.Matches(msg, m.keymap.PageUp, m.keymap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) send() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if m.streaming || question == "" || m.config.Responder == nil {
		return m, nil
	}
	m.input.Reset()

	req := m.config.Base
	req.Messages = append(append([]model.Message{}, m.history...), model.UserMessage(question))

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.stream = m.config.Responder.Respond(ctx, req)
	m.streaming = true
	m.turns = append(m.turns, turn{question: question})
	m.refresh()

	return m, tea.Batch(waitForChunk(m.stream), m.spinner.Tick)
}

func (m Model) handleChunk(msg chunkMsg) (tea.Model, tea.Cmd) {
	if len(m.turns) == 0 {
		return m, nil
	}
	current := &m.turns[len(m.turns)-1]

	if msg.closed {
		if current.done && !current.failed {
			m.history = append(m.history,
				model.UserMessage(current.question),
				model.Message{Role: model.RoleAssistant, Content: current.answer()},
			)
		}
		m.streaming = false
		m.stream = nil
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.refresh()
		return m, nil
	}

	switch msg.chunk.Kind {
	case advisor.ChunkDone:
		current.done = true
	case advisor.ChunkError:
		current.failed = true
		current.parts = append(current.parts, part{kind: msg.chunk.Kind, text: msg.chunk.Text})
	default:
		current.parts = append(current.parts, part{kind: msg.chunk.Kind, text: msg.chunk.Text})
	}
	m.refresh()
	return m, waitForChunk(m.stream)
}

// stop cancels the in-flight answer. The stream closes on its own and the
// closing chunkMsg ends the turn.
func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 2)
	m.input.SetHeight(inputHeight)
	m.help.Width = width
	m.viewport.Width = width
	m.viewport.Height = max(height-inputHeight-chromeHeight, 1)
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// History returns the completed conversation turns.
func (m Model) History() []model.Message {
	return append([]model.Message{}, m.history...)
}
