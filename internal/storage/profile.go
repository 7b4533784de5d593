package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/origin/internal/model"
)

// profileID is the fixed identity of the singleton profile row.
const profileID = 1

// SaveProfile upserts the singleton user profile.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, spendingRegret, userGoals string, topCategories []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if topCategories == nil {
		topCategories = []string{}
	}
	categoriesJSON, err := json.Marshal(topCategories)
	if err != nil {
		return fmt.Errorf("failed to encode top categories: %w", err)
	}

	return s.withConn(ctx, func(conn *sql.Conn) error {
		_, execErr := conn.ExecContext(ctx, `
			INSERT INTO user_profile (id, spending_regret, user_goals, top_categories, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				spending_regret = excluded.spending_regret,
				user_goals = excluded.user_goals,
				top_categories = excluded.top_categories,
				updated_at = excluded.updated_at
		`, profileID, spendingRegret, userGoals, string(categoriesJSON), s.now())
		if execErr != nil {
			return fmt.Errorf("failed to save profile: %w", execErr)
		}
		return nil
	})
}

// GetProfile returns the singleton profile, or nil if none has been saved.
func (s *SQLiteStorage) GetProfile(ctx context.Context) (*model.UserProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var profile *model.UserProfile
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var (
			regret     sql.NullString
			goals      sql.NullString
			categories sql.NullString
			updatedAt  sql.NullTime
		)

		scanErr := conn.QueryRowContext(ctx, `
			SELECT spending_regret, user_goals, top_categories, updated_at
			FROM user_profile
			WHERE id = ?
		`, profileID).Scan(&regret, &goals, &categories, &updatedAt)

		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil
		}
		if scanErr != nil {
			return fmt.Errorf("failed to get profile: %w", scanErr)
		}

		topCategories := []string{}
		if categories.Valid && categories.String != "" {
			if err := json.Unmarshal([]byte(categories.String), &topCategories); err != nil {
				return fmt.Errorf("%w: top_categories: %v", ErrCorruptValue, err)
			}
		}

		profile = &model.UserProfile{
			SpendingRegret: regret.String,
			UserGoals:      goals.String,
			TopCategories:  topCategories,
		}
		if updatedAt.Valid {
			profile.UpdatedAt = updatedAt.Time
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return profile, nil
}
