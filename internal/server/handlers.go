package server

import (
	"net/http"
	"strings"

	"github.com/Veraticus/origin/internal/advisor"
	"github.com/Veraticus/origin/internal/model"
	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	FinancialContext string          `json:"financialContext"`
	SurveyContext    string          `json:"surveyContext"`
	Messages         []model.Message `json:"messages"`
}

type surveyRequest struct {
	Answers          map[string]any `json:"answers"`
	FinancialContext string         `json:"financialContext"`
}

type transactionsRequest struct {
	Transactions []model.Transaction `json:"transactions"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleChat streams the advisor's answer as server-sent events.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	for _, m := range req.Messages {
		if !m.Role.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message role: " + string(m.Role)})
			return
		}
	}

	ctx := c.Request.Context()
	surveyContext := req.SurveyContext
	if strings.TrimSpace(surveyContext) == "" {
		profile, err := s.deps.Store.GetProfile(ctx)
		if err != nil {
			s.logger.Warn("failed to load profile for chat", "request_id", c.GetString(requestIDKey), "error", err)
		}
		surveyContext = profile.ContextSummary()
	}

	financialContext := req.FinancialContext
	if s.deps.DangerZones != nil {
		financialContext = s.deps.DangerZones.AppendContext(financialContext, s.cfg.DangerZoneLimit)
	}

	chunks := s.deps.Advisor.Respond(ctx, advisor.Request{
		Messages:         req.Messages,
		FinancialContext: financialContext,
		SurveyContext:    surveyContext,
	})

	s.metrics.ActiveStreams.Inc()
	defer s.metrics.ActiveStreams.Dec()

	setSSEHeaders(c.Writer)
	c.Status(http.StatusOK)
	w := newSSEWriter(c.Writer)

	for chunk := range chunks {
		s.metrics.ChunksTotal.WithLabelValues(chunk.Kind.String()).Inc()

		var err error
		if chunk.Kind == advisor.ChunkDone {
			err = w.writeDone()
		} else {
			err = w.writeContent(chunk.Text)
		}
		if err != nil {
			s.logger.Debug("client went away", "request_id", c.GetString(requestIDKey), "error", err)
			// Keep draining so the producer observes cancellation and exits.
			for range chunks {
			}
			return
		}
	}
}

// handleSurveyAnalysis analyzes survey answers and stores the resulting profile.
func (s *Server) handleSurveyAnalysis(c *gin.Context) {
	var req surveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	analysis, err := s.deps.Survey.Analyze(ctx, advisor.NormalizeAnswers(req.Answers), req.FinancialContext)
	if err != nil {
		s.logger.Warn("survey analysis failed, returning fallback", "request_id", c.GetString(requestIDKey), "error", err)
		s.metrics.FallbacksTotal.WithLabelValues("survey").Inc()
		c.JSON(http.StatusOK, advisor.FallbackSurvey())
		return
	}

	if err := s.deps.Store.SaveProfile(ctx, analysis.SpendingRegret, analysis.UserGoals, analysis.TopCategories); err != nil {
		s.logger.Error("failed to save profile", "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// handleBehaviorSummary summarizes the posted transactions against the stored profile.
func (s *Server) handleBehaviorSummary(c *gin.Context) {
	var req transactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	profile, err := s.deps.Store.GetProfile(ctx)
	if err != nil {
		s.logger.Warn("failed to load profile for summary", "request_id", c.GetString(requestIDKey), "error", err)
		profile = nil
	}

	summary, err := s.deps.Summarizer.Summarize(ctx, req.Transactions, profile)
	if err != nil {
		s.logger.Warn("behavioral summary failed, returning fallback", "request_id", c.GetString(requestIDKey), "error", err)
		s.metrics.FallbacksTotal.WithLabelValues("summary").Inc()
		summary = advisor.SummaryFallbackMessage
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	profile, err := s.deps.Store.GetProfile(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to load profile", "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no profile has been saved"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// handleAnnotateRegret scores any posted transactions that lack an annotation.
func (s *Server) handleAnnotateRegret(c *gin.Context) {
	var req transactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	profile, err := s.deps.Store.GetProfile(ctx)
	if err != nil {
		s.logger.Warn("failed to load profile for regret", "request_id", c.GetString(requestIDKey), "error", err)
		profile = nil
	}

	annotations, err := s.deps.Regret.AnnotateMissing(ctx, s.deps.Store, model.Expenses(req.Transactions), profile)
	if err != nil {
		s.logger.Error("regret annotation failed", "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to annotate transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"annotations": annotations})
}

// handleGetRegret looks up stored annotations for ?ids=a,b,c.
func (s *Server) handleGetRegret(c *gin.Context) {
	var ids []string
	for _, raw := range c.QueryArray("ids") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	annotations, err := s.deps.Store.GetRegretBatch(c.Request.Context(), ids)
	if err != nil {
		s.logger.Error("failed to load regret annotations", "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load annotations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"annotations": annotations})
}
