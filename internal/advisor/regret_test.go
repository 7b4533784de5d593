package advisor

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/origin/internal/llm"
	"github.com/Veraticus/origin/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRegretStore struct {
	saveErr   error
	batchErr  error
	data      map[string]model.RegretAnnotation
	lookups   [][]string
	saveCalls int
	mu        sync.Mutex
}

func newMemRegretStore() *memRegretStore {
	return &memRegretStore{data: make(map[string]model.RegretAnnotation)}
}

func (m *memRegretStore) SaveRegret(_ context.Context, id string, score int, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[id] = model.RegretAnnotation{TransactionID: id, Score: score, Reason: reason}
	return nil
}

func (m *memRegretStore) GetRegretBatch(_ context.Context, ids []string) (map[string]model.RegretAnnotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, ids)
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make(map[string]model.RegretAnnotation)
	for _, id := range ids {
		if a, ok := m.data[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func TestRegretAnalyzer_Analyze(t *testing.T) {
	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		reply     string
		wantScore int
		wantErr   error
	}{
		{"plain", `{"regret_score": 85, "regret_reason": "Late-night delivery"}`, 85, nil},
		{"fenced", "```json\n{\"regret_score\": 12, \"regret_reason\": \"Groceries\"}\n```", 12, nil},
		{"fractional score rounds", `{"regret_score": 40.6, "regret_reason": "x"}`, 41, nil},
		{"clamped high", `{"regret_score": 150, "regret_reason": "x"}`, 100, nil},
		{"clamped low", `{"regret_score": -3, "regret_reason": "x"}`, 0, nil},
		{"malformed", `regret is high`, 0, ErrMalformedOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockClient(tt.reply)
			r := NewRegretAnalyzer(mock, DefaultTiers())
			r.now = func() time.Time { return fixed }

			txn := model.Transaction{ID: "tx1", Name: "DoorDash", Amount: 42}
			got, err := r.Analyze(context.Background(), txn, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "tx1", got.TransactionID)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, fixed, got.AnalyzedAt)

			calls := mock.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, DefaultFastModel, calls[0].Model)
			assert.Contains(t, calls[0].Messages[1].Content, "DoorDash $42.00")
		})
	}
}

func TestRegretAnalyzer_AnnotateMissing(t *testing.T) {
	store := newMemRegretStore()
	store.data["t1"] = model.RegretAnnotation{TransactionID: "t1", Score: 10, Reason: "cached"}

	mock := &llm.MockClient{
		CompleteFn: func(_ context.Context, _ model.ModelID, msgs []model.Message) (string, error) {
			if strings.Contains(msgs[1].Content, "Broken") {
				return "", errors.New("model exploded")
			}
			return `{"regret_score": 70, "regret_reason": "Impulse"}`, nil
		},
	}
	r := NewRegretAnalyzer(mock, DefaultTiers())

	txns := []model.Transaction{
		{ID: "t1", Name: "Cached"},
		{ID: "t2", Name: "Fresh"},
		{ID: "t3", Name: "Broken"},
		{Name: "No ID"},
	}
	got, err := r.AnnotateMissing(context.Background(), store, txns, &model.UserProfile{UserGoals: "save"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "cached", got["t1"].Reason)
	assert.Equal(t, 70, got["t2"].Score)
	_, ok := got["t3"]
	assert.False(t, ok)

	assert.Equal(t, 2, mock.CallCount(), "only uncached transactions with ids are analyzed")
	assert.Equal(t, 1, store.saveCalls)
	assert.Equal(t, []string{"t1", "t2", "t3"}, store.lookups[0])
	assert.Equal(t, "Impulse", store.data["t2"].Reason)
}

func TestRegretAnalyzer_AnnotateMissingStoreErrors(t *testing.T) {
	r := NewRegretAnalyzer(llm.NewMockClient(`{"regret_score": 5, "regret_reason": "fine"}`), DefaultTiers())
	txns := []model.Transaction{{ID: "t1", Name: "A"}}

	t.Run("lookup failure", func(t *testing.T) {
		store := newMemRegretStore()
		store.batchErr = errors.New("disk full")

		_, err := r.AnnotateMissing(context.Background(), store, txns, nil)
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("save failure", func(t *testing.T) {
		store := newMemRegretStore()
		store.saveErr = errors.New("locked")

		_, err := r.AnnotateMissing(context.Background(), store, txns, nil)
		assert.ErrorContains(t, err, "locked")
	})
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-0.4))
	assert.Equal(t, 50, clampScore(49.5))
	assert.Equal(t, 100, clampScore(100.49))
	assert.Equal(t, 100, clampScore(1e9))
	assert.Equal(t, 100, clampScore(1e20))
	assert.Equal(t, 100, clampScore(math.Inf(1)))
	assert.Equal(t, 0, clampScore(-1e20))
	assert.Equal(t, 0, clampScore(math.NaN()))
}

func TestRegretAnalyzer_AnalyzeHugeScore(t *testing.T) {
	r := NewRegretAnalyzer(llm.NewMockClient(`{"regret_score": 1e20, "regret_reason": "Certain regret"}`), DefaultTiers())

	got, err := r.Analyze(context.Background(), model.Transaction{ID: "tx1", Name: "Casino", Amount: 500}, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Score)
}
