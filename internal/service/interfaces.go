// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/origin/internal/model"
)

// ProfileStore persists the single user behavioral profile.
type ProfileStore interface {
	SaveProfile(ctx context.Context, spendingRegret, userGoals string, topCategories []string) error
	// GetProfile returns nil and no error when no profile has been saved yet.
	GetProfile(ctx context.Context) (*model.UserProfile, error)
}

// RegretStore persists per-transaction regret annotations.
type RegretStore interface {
	SaveRegret(ctx context.Context, transactionID string, score int, reason string) error
	// GetRegretBatch returns only the annotations that exist; missing ids are absent.
	GetRegretBatch(ctx context.Context, transactionIDs []string) (map[string]model.RegretAnnotation, error)
}

// Storage is the full persistence contract used by the composition root.
type Storage interface {
	ProfileStore
	RegretStore

	Migrate(ctx context.Context) error
	Close() error
}

// TransactionFetcher fetches recent transactions from a bank data source.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
