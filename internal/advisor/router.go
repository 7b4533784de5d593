// Package advisor implements the conversational financial advisor: query
// routing, the streaming response orchestrator, and the survey, behavior
// and regret analyzers built on top of a completion client.
package advisor

import (
	"strings"

	"github.com/Veraticus/origin/internal/model"
)

// Default tier model identifiers.
const (
	DefaultFastModel         model.ModelID = "openai/gpt-4o-mini"
	DefaultComplexModel      model.ModelID = "openai/gpt-4o"
	DefaultQuantitativeModel model.ModelID = "google/gemini-2.0-flash"
)

// Tiers maps each reasoning tier to the model that serves it.
type Tiers struct {
	Fast         model.ModelID
	Complex      model.ModelID
	Quantitative model.ModelID
}

// DefaultTiers returns the stock tier assignment.
func DefaultTiers() Tiers {
	return Tiers{
		Fast:         DefaultFastModel,
		Complex:      DefaultComplexModel,
		Quantitative: DefaultQuantitativeModel,
	}
}

// withDefaults fills any unset tier from DefaultTiers.
func (t Tiers) withDefaults() Tiers {
	d := DefaultTiers()
	if t.Fast == "" {
		t.Fast = d.Fast
	}
	if t.Complex == "" {
		t.Complex = d.Complex
	}
	if t.Quantitative == "" {
		t.Quantitative = d.Quantitative
	}
	return t
}

var (
	complexKeywords      = []string{"analyze", "plan", "strategy"}
	quantitativeKeywords = []string{"spending", "budget", "numbers", "calculate", "total", "sum", "average"}
)

// Router picks a model tier for a query using keyword heuristics.
type Router struct {
	tiers Tiers
}

// NewRouter creates a router over the given tiers.
func NewRouter(tiers Tiers) *Router {
	return &Router{tiers: tiers.withDefaults()}
}

// Tiers returns the router's tier assignment.
func (r *Router) Tiers() Tiers {
	return r.tiers
}

// Route returns the model for a query. Rules are checked in order and the
// first match wins.
func (r *Router) Route(query string) model.ModelID {
	q := strings.ToLower(query)

	switch {
	case containsAny(q, complexKeywords):
		return r.tiers.Complex
	case containsAny(q, quantitativeKeywords):
		return r.tiers.Quantitative
	default:
		return r.tiers.Fast
	}
}

// Label returns the user-facing name of the tier a model serves.
func (r *Router) Label(modelID model.ModelID) string {
	switch modelID {
	case r.tiers.Fast:
		return "Fast Reasoning"
	case r.tiers.Complex:
		return "Advanced Reasoning"
	case r.tiers.Quantitative:
		return "Quantitative Reasoning"
	default:
		return "AI Model"
	}
}

// IsWorkflowQuery reports whether a query asks for both analysis and a plan.
func IsWorkflowQuery(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(q, "analyze") && strings.Contains(q, "plan")
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
