// Package testutil provides shared test fixtures: a migrated SQLite store
// and a fluent builder for transactions.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/origin/internal/model"
	"github.com/Veraticus/origin/internal/storage"
)

// TestDB is a migrated on-disk store scoped to a single test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// Seed prepares data in a fresh TestDB.
type Seed func(ctx context.Context, store *storage.SQLiteStorage) error

// WithProfile seeds the behavioral profile.
func WithProfile(profile model.UserProfile) Seed {
	return func(ctx context.Context, store *storage.SQLiteStorage) error {
		return store.SaveProfile(ctx, profile.SpendingRegret, profile.UserGoals, profile.TopCategories)
	}
}

// WithRegrets seeds regret annotations.
func WithRegrets(annotations ...model.RegretAnnotation) Seed {
	return func(ctx context.Context, store *storage.SQLiteStorage) error {
		for _, a := range annotations {
			if err := store.SaveRegret(ctx, a.TransactionID, a.Score, a.Reason); err != nil {
				return err
			}
		}
		return nil
	}
}

// SetupTestDB creates a migrated database in the test's temp dir and applies
// the seeds. The store is closed when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.WithProfile(model.UserProfile{UserGoals: "Save"}))
func SetupTestDB(t *testing.T, seeds ...Seed) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "origin.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for _, seed := range seeds {
		if err := seed(ctx, store); err != nil {
			t.Fatalf("failed to seed test database: %v", err)
		}
	}

	return &TestDB{Storage: store, t: t}
}

// MustProfile returns the stored profile or fails the test.
func (db *TestDB) MustProfile() *model.UserProfile {
	db.t.Helper()
	profile, err := db.Storage.GetProfile(context.Background())
	if err != nil {
		db.t.Fatalf("failed to read profile: %v", err)
	}
	return profile
}

// MustRegrets returns the stored annotations for ids or fails the test.
func (db *TestDB) MustRegrets(ids ...string) map[string]model.RegretAnnotation {
	db.t.Helper()
	annotations, err := db.Storage.GetRegretBatch(context.Background(), ids)
	if err != nil {
		db.t.Fatalf("failed to read regrets: %v", err)
	}
	return annotations
}
