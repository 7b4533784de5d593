package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/origin/internal/advisor"
	"github.com/Veraticus/origin/internal/common"
	"github.com/Veraticus/origin/internal/config"
	"github.com/Veraticus/origin/internal/dangerzone"
	"github.com/Veraticus/origin/internal/llm"
	"github.com/Veraticus/origin/internal/model"
	"github.com/Veraticus/origin/internal/ofx"
	"github.com/Veraticus/origin/internal/plaid"
	"github.com/Veraticus/origin/internal/service"
	"github.com/Veraticus/origin/internal/simplefin"
	"github.com/Veraticus/origin/internal/storage"
)

// defaultLookbackDays bounds how far back Plaid transactions are fetched.
const defaultLookbackDays = 30

// initStorage opens the configured database and runs migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.DatabasePath(viper.GetViper())

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// createLLMClient creates the provider client from configuration.
func createLLMClient() (llm.Client, error) {
	cfg, err := config.LLM(viper.GetViper())
	if err != nil {
		return nil, err
	}
	cfg.Logger = slog.Default()
	return llm.NewClient(cfg)
}

// components are the advisor services built on one provider client.
type components struct {
	advisor    *advisor.Advisor
	survey     *advisor.SurveyAnalyzer
	summarizer *advisor.Summarizer
	regret     *advisor.RegretAnalyzer
}

func buildComponents(client llm.Client) components {
	v := viper.GetViper()
	tiers := config.Tiers(v)
	return components{
		advisor: advisor.New(client, advisor.NewRouter(tiers),
			advisor.WithPause(config.WorkflowPause(v)),
			advisor.WithLogger(slog.Default()),
		),
		survey:     advisor.NewSurveyAnalyzer(client, tiers),
		summarizer: advisor.NewSummarizer(client, tiers),
		regret:     advisor.NewRegretAnalyzer(client, tiers),
	}
}

// loadDangerZones reads the configured feed. A missing file yields an empty feed.
func loadDangerZones() (*dangerzone.Feed, error) {
	path := config.DangerZonePath(viper.GetViper())
	feed, err := dangerzone.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load danger zones: %w", err)
	}
	slog.Debug("danger zones loaded", "path", path, "count", len(feed.Zones))
	return feed, nil
}

// transactionSource picks between an OFX export, the configured Plaid item
// and the configured SimpleFIN bridge.
type transactionSource struct {
	ofxPath      string
	usePlaid     bool
	useSimpleFIN bool
	days         int
}

func (s transactionSource) fetcher(ctx context.Context) (service.TransactionFetcher, error) {
	selected := 0
	for _, on := range []bool{s.ofxPath != "", s.usePlaid, s.useSimpleFIN} {
		if on {
			selected++
		}
	}
	if selected > 1 {
		return nil, common.NewUserError("use only one of --ofx, --plaid or --simplefin", common.ErrInvalidConfig)
	}
	if s.ofxPath != "" {
		return ofxFile{path: s.ofxPath, parser: ofx.NewParser()}, nil
	}
	if s.usePlaid {
		cfg := config.Plaid(viper.GetViper())
		if !cfg.Configured() {
			return nil, common.NewUserError("plaid credentials are not configured", common.ErrMissingConfig)
		}
		client, err := plaid.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	if s.useSimpleFIN {
		cfg := config.SimpleFIN(viper.GetViper())
		if !cfg.Configured() {
			return nil, common.NewUserError("simplefin token or access URL is not configured", common.ErrMissingConfig)
		}
		client, err := simplefin.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, common.NewUserError("a transaction source is required: pass --ofx <file>, --plaid or --simplefin", common.ErrMissingConfig)
}

func (s transactionSource) load(ctx context.Context) ([]model.Transaction, error) {
	fetcher, err := s.fetcher(ctx)
	if err != nil {
		return nil, err
	}
	days := s.days
	if days <= 0 {
		days = defaultLookbackDays
	}
	end := time.Now()
	txns, err := fetcher.GetTransactions(ctx, end.AddDate(0, 0, -days), end)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return txns, nil
}

// ofxFile adapts an OFX export to the fetcher contract. The date range is
// ignored; the export already covers the period the user chose.
type ofxFile struct {
	parser *ofx.Parser
	path   string
}

func (f ofxFile) GetTransactions(ctx context.Context, _, _ time.Time) ([]model.Transaction, error) {
	return f.parser.ParsePath(ctx, config.ExpandPath(f.path))
}
