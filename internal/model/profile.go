package model

import (
	"fmt"
	"strings"
	"time"
)

// UserProfile is the single behavioral profile derived from the onboarding survey.
type UserProfile struct {
	UpdatedAt      time.Time `json:"updated_at"`
	SpendingRegret string    `json:"spending_regret"`
	UserGoals      string    `json:"user_goals"`
	TopCategories  []string  `json:"top_categories"`
}

// ContextSummary renders the profile the way the chat prompt expects survey context.
func (p *UserProfile) ContextSummary() string {
	if p == nil {
		return ""
	}
	var parts []string
	if p.UserGoals != "" {
		parts = append(parts, fmt.Sprintf("Financial Goals: %s.", strings.TrimSuffix(p.UserGoals, ".")))
	}
	if p.SpendingRegret != "" {
		parts = append(parts, fmt.Sprintf("Spending Regret: %s.", strings.TrimSuffix(p.SpendingRegret, ".")))
	}
	if len(p.TopCategories) > 0 {
		parts = append(parts, fmt.Sprintf("Top Categories: %s.", strings.Join(p.TopCategories, ", ")))
	}
	return strings.Join(parts, " ")
}

// RegretAnnotation records how much the user is predicted to regret a transaction.
type RegretAnnotation struct {
	AnalyzedAt    time.Time `json:"analyzed_at"`
	TransactionID string    `json:"transaction_id"`
	Reason        string    `json:"regret_reason"`
	Score         int       `json:"regret_score"` // 0 to 100
}
