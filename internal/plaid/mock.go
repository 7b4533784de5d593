package plaid

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/origin/internal/model"
	"github.com/Veraticus/origin/internal/service"
)

// MockClient is a mock transaction fetcher for testing.
type MockClient struct {
	GetTransactionsFn    func(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	GetTransactionsCalls []GetTransactionsCall
	mu                   sync.Mutex
}

// GetTransactionsCall records the parameters of a GetTransactions call.
type GetTransactionsCall struct {
	StartDate time.Time
	EndDate   time.Time
}

// NewMockClient creates a mock that returns the given transactions.
func NewMockClient(txns ...model.Transaction) *MockClient {
	return &MockClient{
		GetTransactionsFn: func(_ context.Context, _, _ time.Time) ([]model.Transaction, error) {
			return txns, nil
		},
	}
}

// GetTransactions records the call and delegates to GetTransactionsFn.
func (m *MockClient) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	m.mu.Lock()
	m.GetTransactionsCalls = append(m.GetTransactionsCalls, GetTransactionsCall{
		StartDate: startDate,
		EndDate:   endDate,
	})
	m.mu.Unlock()

	if m.GetTransactionsFn != nil {
		return m.GetTransactionsFn(ctx, startDate, endDate)
	}
	return []model.Transaction{}, nil
}

var _ service.TransactionFetcher = (*MockClient)(nil)
