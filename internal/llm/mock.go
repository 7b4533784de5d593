package llm

import (
	"context"
	"io"
	"sync"

	"github.com/Veraticus/origin/internal/model"
)

// MockClient is a scripted Client for tests.
// When CompleteFn or StreamFn are nil, Completion and Fragments are returned.
type MockClient struct {
	CompleteFn func(ctx context.Context, modelID model.ModelID, messages []model.Message) (string, error)
	StreamFn   func(ctx context.Context, modelID model.ModelID, messages []model.Message) (Stream, error)
	Err        error
	Completion string
	Fragments  []string
	calls      []MockCall
	mu         sync.Mutex
}

// MockCall records one request made against a MockClient.
type MockCall struct {
	Model     model.ModelID
	Messages  []model.Message
	Streaming bool
}

// NewMockClient creates a mock that answers every call with the given text.
func NewMockClient(completion string, fragments ...string) *MockClient {
	return &MockClient{
		Completion: completion,
		Fragments:  fragments,
	}
}

// Complete records the call and returns the scripted completion.
func (m *MockClient) Complete(ctx context.Context, modelID model.ModelID, messages []model.Message) (string, error) {
	m.record(modelID, messages, false)

	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, modelID, messages)
	}
	if m.Err != nil {
		return "", providerError(modelID, m.Err)
	}
	return m.Completion, nil
}

// Stream records the call and returns the scripted fragments.
func (m *MockClient) Stream(ctx context.Context, modelID model.ModelID, messages []model.Message) (Stream, error) {
	m.record(modelID, messages, true)

	if m.StreamFn != nil {
		return m.StreamFn(ctx, modelID, messages)
	}
	if m.Err != nil {
		return nil, providerError(modelID, m.Err)
	}
	return NewSliceStream(m.Fragments...), nil
}

// Calls returns a copy of every recorded call in order.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns the number of recorded calls.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *MockClient) record(modelID model.ModelID, messages []model.Message, streaming bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := make([]model.Message, len(messages))
	copy(msgs, messages)
	m.calls = append(m.calls, MockCall{Model: modelID, Messages: msgs, Streaming: streaming})
}

// SliceStream is a Stream over a fixed list of fragments.
// If Err is set it is returned after the fragments instead of io.EOF.
type SliceStream struct {
	Err       error
	fragments []string
	pos       int
	closed    bool
	mu        sync.Mutex
}

// NewSliceStream creates a stream that yields the fragments in order.
func NewSliceStream(fragments ...string) *SliceStream {
	return &SliceStream{fragments: fragments}
}

// Recv returns the next fragment, then Err or io.EOF.
func (s *SliceStream) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", io.EOF
	}
	if s.pos < len(s.fragments) {
		f := s.fragments[s.pos]
		s.pos++
		return f, nil
	}
	if s.Err != nil {
		return "", s.Err
	}
	return "", io.EOF
}

// Close marks the stream closed.
func (s *SliceStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *SliceStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
