package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Veraticus/origin/internal/model"
)

// regretBatchSize bounds the number of bound parameters per lookup query.
const regretBatchSize = 500

// SaveRegret upserts the regret annotation for a transaction. A later save
// for the same transaction replaces the earlier one.
func (s *SQLiteStorage) SaveRegret(ctx context.Context, transactionID string, score int, reason string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}

	return s.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, `
			INSERT INTO transaction_metadata (transaction_id, regret_score, regret_reason, analyzed_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(transaction_id) DO UPDATE SET
				regret_score = excluded.regret_score,
				regret_reason = excluded.regret_reason,
				analyzed_at = excluded.analyzed_at
		`, transactionID, score, reason, s.now())
		if err != nil {
			return fmt.Errorf("failed to save regret for %s: %w", transactionID, err)
		}
		return nil
	})
}

// GetRegretBatch looks up annotations for the given transaction ids.
// Ids without an annotation are simply absent from the result.
func (s *SQLiteStorage) GetRegretBatch(ctx context.Context, transactionIDs []string) (map[string]model.RegretAnnotation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	results := make(map[string]model.RegretAnnotation)
	ids := uniqueIDs(transactionIDs)
	if len(ids) == 0 {
		return results, nil
	}

	err := s.withConn(ctx, func(conn *sql.Conn) error {
		for start := 0; start < len(ids); start += regretBatchSize {
			end := min(start+regretBatchSize, len(ids))
			if err := s.getRegretChunk(ctx, conn, ids[start:end], results); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (s *SQLiteStorage) getRegretChunk(ctx context.Context, conn *sql.Conn, ids []string, results map[string]model.RegretAnnotation) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	// #nosec G201 - placeholders only contains "?" markers
	query := fmt.Sprintf(`
		SELECT transaction_id, regret_score, regret_reason, analyzed_at
		FROM transaction_metadata
		WHERE transaction_id IN (%s)
	`, placeholders)

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query regret annotations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			annotation model.RegretAnnotation
			score      sql.NullInt64
			reason     sql.NullString
			analyzedAt sql.NullTime
		)
		if err := rows.Scan(&annotation.TransactionID, &score, &reason, &analyzedAt); err != nil {
			return fmt.Errorf("failed to scan regret annotation: %w", err)
		}
		annotation.Score = int(score.Int64)
		annotation.Reason = reason.String
		if analyzedAt.Valid {
			annotation.AnalyzedAt = analyzedAt.Time
		}
		results[annotation.TransactionID] = annotation
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate regret annotations: %w", err)
	}
	return nil
}

// uniqueIDs drops blanks and duplicates while keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
