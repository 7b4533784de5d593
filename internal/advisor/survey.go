package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/origin/internal/llm"
	"github.com/Veraticus/origin/internal/model"
)

// SurveyAnalysis is the behavioral profile distilled from survey answers.
type SurveyAnalysis struct {
	SpendingRegret string   `json:"spending_regret"`
	UserGoals      string   `json:"user_goals"`
	TopCategories  []string `json:"top_categories"`
}

// Profile converts the analysis into the persisted profile shape.
func (s SurveyAnalysis) Profile() *model.UserProfile {
	return &model.UserProfile{
		SpendingRegret: s.SpendingRegret,
		UserGoals:      s.UserGoals,
		TopCategories:  s.TopCategories,
	}
}

// FallbackSurvey is returned when the survey cannot be analyzed.
func FallbackSurvey() SurveyAnalysis {
	return SurveyAnalysis{
		SpendingRegret: "Could not analyze spending regret at this time.",
		UserGoals:      "Could not analyze goals at this time.",
		TopCategories:  []string{"Food & Drink", "Shopping", "Travel", "Groceries", "Entertainment"},
	}
}

// SurveyAnalyzer turns onboarding survey answers into a behavioral profile.
type SurveyAnalyzer struct {
	client llm.Client
	logger *slog.Logger
	model  model.ModelID
}

// NewSurveyAnalyzer creates an analyzer that uses the complex tier.
func NewSurveyAnalyzer(client llm.Client, tiers Tiers) *SurveyAnalyzer {
	return &SurveyAnalyzer{
		client: client,
		model:  tiers.withDefaults().Complex,
		logger: slog.Default().With("component", "survey"),
	}
}

// Analyze asks the model for a profile. It returns a *llm.ProviderError when
// the call fails and ErrMalformedOutput when the reply is not the expected JSON.
func (s *SurveyAnalyzer) Analyze(ctx context.Context, answers map[string]string, financialContext string) (SurveyAnalysis, error) {
	if answers == nil {
		answers = map[string]string{}
	}

	messages := []model.Message{
		model.SystemMessage(surveySystemPrompt),
		model.UserMessage(surveyUserPrompt(financialContext, indentJSON(answers))),
	}

	content, err := s.client.Complete(ctx, s.model, messages)
	if err != nil {
		return SurveyAnalysis{}, err
	}

	var analysis SurveyAnalysis
	if err := decodeModelJSON(content, &analysis); err != nil {
		return SurveyAnalysis{}, err
	}
	if len(analysis.TopCategories) == 0 {
		return SurveyAnalysis{}, fmt.Errorf("%w: no top_categories in reply", ErrMalformedOutput)
	}
	return analysis, nil
}

// AnalyzeOrFallback never fails; any error yields FallbackSurvey.
func (s *SurveyAnalyzer) AnalyzeOrFallback(ctx context.Context, answers map[string]string, financialContext string) SurveyAnalysis {
	analysis, err := s.Analyze(ctx, answers, financialContext)
	if err != nil {
		s.logger.Warn("survey analysis failed, using fallback", "error", err)
		return FallbackSurvey()
	}
	return analysis
}

// NormalizeAnswers flattens decoded JSON survey answers into strings.
// Multi-select answers are joined with ", " and slider values are printed
// without trailing zeros.
func NormalizeAnswers(raw map[string]any) map[string]string {
	answers := make(map[string]string, len(raw))
	for k, v := range raw {
		answers[k] = answerString(v)
	}
	return answers
}

func answerString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, answerString(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
