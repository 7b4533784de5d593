package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Veraticus/origin/internal/llm"
	"github.com/Veraticus/origin/internal/model"
	"github.com/Veraticus/origin/internal/service"
)

// RegretAnalyzer predicts per-transaction regret from the user's profile.
type RegretAnalyzer struct {
	client llm.Client
	logger *slog.Logger
	now    func() time.Time
	model  model.ModelID
}

// NewRegretAnalyzer creates an analyzer that uses the fast tier.
func NewRegretAnalyzer(client llm.Client, tiers Tiers) *RegretAnalyzer {
	return &RegretAnalyzer{
		client: client,
		model:  tiers.withDefaults().Fast,
		logger: slog.Default().With("component", "regret"),
		now:    time.Now,
	}
}

type regretReply struct {
	Reason string  `json:"regret_reason"`
	Score  float64 `json:"regret_score"`
}

// Analyze scores a single transaction. The score is clamped to 0..100.
func (r *RegretAnalyzer) Analyze(ctx context.Context, txn model.Transaction, profile *model.UserProfile) (model.RegretAnnotation, error) {
	profileJSON := "{}"
	if profile != nil {
		profileJSON = indentJSON(profile)
	}

	messages := []model.Message{
		model.SystemMessage(regretSystemPrompt),
		model.UserMessage(regretUserPrompt(formatTransaction(&txn), profileJSON)),
	}

	content, err := r.client.Complete(ctx, r.model, messages)
	if err != nil {
		return model.RegretAnnotation{}, err
	}

	var reply regretReply
	if err := decodeModelJSON(content, &reply); err != nil {
		return model.RegretAnnotation{}, err
	}

	return model.RegretAnnotation{
		TransactionID: txn.ID,
		Score:         clampScore(reply.Score),
		Reason:        reply.Reason,
		AnalyzedAt:    r.now(),
	}, nil
}

// AnnotateMissing analyzes every transaction that has no stored annotation,
// saves the new ones and returns stored and new annotations keyed by id.
// Model failures for individual transactions are logged and skipped; storage
// failures are returned.
func (r *RegretAnalyzer) AnnotateMissing(ctx context.Context, store service.RegretStore, txns []model.Transaction, profile *model.UserProfile) (map[string]model.RegretAnnotation, error) {
	ids := make([]string, 0, len(txns))
	for _, t := range txns {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}

	existing, err := store.GetRegretBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load regret annotations: %w", err)
	}

	result := make(map[string]model.RegretAnnotation, len(ids))
	for id, a := range existing {
		result[id] = a
	}

	for _, txn := range txns {
		if txn.ID == "" {
			continue
		}
		if _, ok := result[txn.ID]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		annotation, err := r.Analyze(ctx, txn, profile)
		if err != nil {
			r.logger.Warn("regret analysis failed", "transaction_id", txn.ID, "error", err)
			continue
		}

		if err := store.SaveRegret(ctx, annotation.TransactionID, annotation.Score, annotation.Reason); err != nil {
			return nil, fmt.Errorf("failed to save regret for %s: %w", txn.ID, err)
		}
		result[txn.ID] = annotation
	}

	r.logger.Info("regret annotation complete",
		"requested", len(ids),
		"cached", len(existing),
		"total", len(result))

	return result, nil
}

// clampScore bounds score to 0..100 before rounding.
func clampScore(score float64) int {
	switch {
	case math.IsNaN(score) || score <= 0:
		return 0
	case score >= 100:
		return 100
	default:
		return int(math.Round(score))
	}
}
