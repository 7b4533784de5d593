package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/origin/internal/llm"
	"github.com/Veraticus/origin/internal/model"
)

// Fixed replies of the behavioral summarizer.
const (
	NoTransactionsMessage  = "No transaction data available for analysis."
	SummaryFallbackMessage = "Unable to generate summary at this time. Please try again later."
)

// maxSummaryTransactions bounds how many transactions go into the prompt.
const maxSummaryTransactions = 20

// Summarizer produces a short narrative of recent spending behavior.
type Summarizer struct {
	client llm.Client
	logger *slog.Logger
	model  model.ModelID
}

// NewSummarizer creates a summarizer that uses the fast tier.
func NewSummarizer(client llm.Client, tiers Tiers) *Summarizer {
	return &Summarizer{
		client: client,
		model:  tiers.withDefaults().Fast,
		logger: slog.Default().With("component", "summarizer"),
	}
}

// Summarize returns a 2-3 sentence behavior summary. Empty input returns
// NoTransactionsMessage without calling the model.
func (s *Summarizer) Summarize(ctx context.Context, txns []model.Transaction, profile *model.UserProfile) (string, error) {
	if len(txns) == 0 {
		return NoTransactionsMessage, nil
	}

	profileJSON := "{}"
	if profile != nil {
		profileJSON = indentJSON(profile)
	}

	messages := []model.Message{
		model.SystemMessage(summarySystemPrompt),
		model.UserMessage(summaryUserPrompt(FormatTransactions(txns, maxSummaryTransactions), profileJSON)),
	}

	s.logger.Debug("generating behavioral summary", "transactions", min(len(txns), maxSummaryTransactions))
	return s.client.Complete(ctx, s.model, messages)
}

// SummarizeOrFallback returns SummaryFallbackMessage when Summarize fails.
func (s *Summarizer) SummarizeOrFallback(ctx context.Context, txns []model.Transaction, profile *model.UserProfile) string {
	summary, err := s.Summarize(ctx, txns, profile)
	if err != nil {
		s.logger.Warn("behavioral summary failed, using fallback", "error", err)
		return SummaryFallbackMessage
	}
	return summary
}

// FormatTransactions renders up to limit of the most recent transactions,
// newest first, one per line.
func FormatTransactions(txns []model.Transaction, limit int) string {
	recent := make([]model.Transaction, len(txns))
	copy(recent, txns)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}

	lines := make([]string, 0, len(recent))
	for i := range recent {
		lines = append(lines, formatTransaction(&recent[i]))
	}
	return strings.Join(lines, "\n")
}

func formatTransaction(t *model.Transaction) string {
	date := "N/A"
	if !t.Date.IsZero() {
		date = t.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("- %s: %s $%.2f (%s)", date, t.DisplayName(), t.Amount, t.PrimaryCategory())
}
