// Package server exposes the advisor over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Veraticus/origin/internal/advisor"
	"github.com/Veraticus/origin/internal/dangerzone"
	"github.com/Veraticus/origin/internal/model"
	"github.com/Veraticus/origin/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultAddr matches the port the mobile client expects.
const DefaultAddr = ":5001"

const shutdownTimeout = 10 * time.Second

// Responder streams advisor answers.
type Responder interface {
	Respond(ctx context.Context, req advisor.Request) <-chan advisor.Chunk
}

// SurveyAnalyzer turns survey answers into a profile.
type SurveyAnalyzer interface {
	Analyze(ctx context.Context, answers map[string]string, financialContext string) (advisor.SurveyAnalysis, error)
}

// Summarizer produces behavioral summaries.
type Summarizer interface {
	Summarize(ctx context.Context, txns []model.Transaction, profile *model.UserProfile) (string, error)
}

// RegretAnnotator scores transactions that have no stored annotation.
type RegretAnnotator interface {
	AnnotateMissing(ctx context.Context, store service.RegretStore, txns []model.Transaction, profile *model.UserProfile) (map[string]model.RegretAnnotation, error)
}

// Store is the persistence the HTTP layer needs.
type Store interface {
	service.ProfileStore
	service.RegretStore
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Advisor     Responder
	Survey      SurveyAnalyzer
	Summarizer  Summarizer
	Regret      RegretAnnotator
	Store       Store
	DangerZones *dangerzone.Feed
	Logger      *slog.Logger
}

// Config holds server settings.
type Config struct {
	Addr            string
	DangerZoneLimit int
}

// Server is the HTTP surface of the advisor.
type Server struct {
	deps    Deps
	engine  *gin.Engine
	metrics *Metrics
	logger  *slog.Logger
	cfg     Config
}

// New builds a server and its routes.
func New(deps Deps, cfg Config) (*Server, error) {
	if deps.Advisor == nil || deps.Survey == nil || deps.Summarizer == nil || deps.Regret == nil {
		return nil, errors.New("server requires advisor, survey, summarizer and regret dependencies")
	}
	if deps.Store == nil {
		return nil, errors.New("server requires a store")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.DangerZoneLimit <= 0 {
		cfg.DangerZoneLimit = dangerzone.DefaultLimit
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		deps:    deps,
		metrics: NewMetrics(),
		logger:  logger.With("component", "server"),
		cfg:     cfg,
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), observe(s.logger, s.metrics))

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api/advisor")
	api.POST("/chat", s.handleChat)
	api.POST("/survey-analysis", s.handleSurveyAnalysis)
	api.POST("/behavior-summary", s.handleBehaviorSummary)
	api.GET("/profile", s.handleGetProfile)
	api.POST("/regret", s.handleAnnotateRegret)
	api.GET("/regret", s.handleGetRegret)

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
