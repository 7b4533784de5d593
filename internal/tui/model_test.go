package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/origin/internal/advisor"
	"github.com/Veraticus/origin/internal/model"
)

type fakeResponder struct {
	chunks   []advisor.Chunk
	requests []advisor.Request
	mu       sync.Mutex
}

func (f *fakeResponder) Respond(_ context.Context, req advisor.Request) <-chan advisor.Chunk {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	ch := make(chan advisor.Chunk, len(f.chunks))
	for _, c := range f.chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func newTestModel(responder *fakeResponder) Model {
	cfg := defaultConfig()
	cfg.Responder = responder
	WithContext("Balance: $1,200", "Goals: save")(&cfg)
	return newModel(context.Background(), cfg)
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

func press(t *testing.T, m Model, keyType tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: keyType})
	return updated.(Model), cmd
}

// drain feeds every chunk of the in-flight stream back into the model.
func drain(t *testing.T, m Model) Model {
	t.Helper()
	for m.streaming {
		msg := waitForChunk(m.stream)()
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestModel_SendStreamsAnswer(t *testing.T) {
	responder := &fakeResponder{chunks: []advisor.Chunk{
		{Kind: advisor.ChunkLabel, Text: "__Using GPT-4o Mini__\n\n"},
		{Kind: advisor.ChunkContent, Text: "Cut "},
		{Kind: advisor.ChunkContent, Text: "takeout."},
		{Kind: advisor.ChunkDone},
	}}
	m := newTestModel(responder)

	m = typeText(t, m, "How do I save?")
	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.streaming)
	assert.Empty(t, m.input.Value())

	m = drain(t, m)

	require.Len(t, responder.requests, 1)
	req := responder.requests[0]
	assert.Equal(t, "Balance: $1,200", req.FinancialContext)
	assert.Equal(t, "Goals: save", req.SurveyContext)
	assert.Equal(t, []model.Message{model.UserMessage("How do I save?")}, req.Messages)

	history := m.History()
	require.Len(t, history, 2)
	assert.Equal(t, "Cut takeout.", history[1].Content)

	transcript := m.renderTranscript()
	assert.Contains(t, transcript, "Using GPT-4o Mini")
	assert.Contains(t, transcript, "Cut takeout.")
	assert.NotContains(t, transcript, "__Using")
}

func TestModel_FollowUpCarriesHistory(t *testing.T) {
	responder := &fakeResponder{chunks: []advisor.Chunk{
		{Kind: advisor.ChunkContent, Text: "ok"},
		{Kind: advisor.ChunkDone},
	}}
	m := newTestModel(responder)

	m = typeText(t, m, "first")
	m, _ = press(t, m, tea.KeyEnter)
	m = drain(t, m)
	m = typeText(t, m, "second")
	m, _ = press(t, m, tea.KeyEnter)
	m = drain(t, m)

	require.Len(t, responder.requests, 2)
	assert.Len(t, responder.requests[1].Messages, 3)
	assert.Len(t, m.History(), 4)
}

func TestModel_ErrorTurnNotRecorded(t *testing.T) {
	responder := &fakeResponder{chunks: []advisor.Chunk{
		{Kind: advisor.ChunkError, Text: "Error: rate limited"},
		{Kind: advisor.ChunkDone},
	}}
	m := newTestModel(responder)

	m = typeText(t, m, "hello")
	m, _ = press(t, m, tea.KeyEnter)
	m = drain(t, m)

	assert.Empty(t, m.History())
	assert.Contains(t, m.renderTranscript(), "Error: rate limited")
}

func TestModel_StreamClosedWithoutDone(t *testing.T) {
	responder := &fakeResponder{chunks: []advisor.Chunk{
		{Kind: advisor.ChunkContent, Text: "partial"},
	}}
	m := newTestModel(responder)

	m = typeText(t, m, "hello")
	m, _ = press(t, m, tea.KeyEnter)
	m = drain(t, m)

	assert.False(t, m.streaming)
	assert.Empty(t, m.History())
	assert.Contains(t, m.renderTranscript(), "(stopped)")
}

func TestModel_EmptyInputIgnored(t *testing.T) {
	responder := &fakeResponder{}
	m := newTestModel(responder)

	m = typeText(t, m, "   ")
	m, cmd := press(t, m, tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.False(t, m.streaming)
	assert.Empty(t, responder.requests)
}

func TestModel_ClearResetsConversation(t *testing.T) {
	responder := &fakeResponder{chunks: []advisor.Chunk{
		{Kind: advisor.ChunkContent, Text: "ok"},
		{Kind: advisor.ChunkDone},
	}}
	m := newTestModel(responder)

	m = typeText(t, m, "hello")
	m, _ = press(t, m, tea.KeyEnter)
	m = drain(t, m)
	require.Len(t, m.History(), 2)

	m, _ = press(t, m, tea.KeyCtrlL)

	assert.Empty(t, m.History())
	assert.Empty(t, m.turns)
}

func TestModel_QuitCancelsStream(t *testing.T) {
	responder := &fakeResponder{chunks: []advisor.Chunk{
		{Kind: advisor.ChunkContent, Text: "ok"},
		{Kind: advisor.ChunkDone},
	}}
	m := newTestModel(responder)

	m = typeText(t, m, "hello")
	m, _ = press(t, m, tea.KeyEnter)
	m, cmd := press(t, m, tea.KeyCtrlC)

	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestModel_WindowResize(t *testing.T) {
	m := newTestModel(&fakeResponder{})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 120, m.viewport.Width)
	assert.Equal(t, 40-inputHeight-chromeHeight, m.viewport.Height)
	assert.Contains(t, m.View(), "Origin")
}
