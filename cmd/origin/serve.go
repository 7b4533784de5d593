package main

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/origin/internal/config"
	"github.com/Veraticus/origin/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the advisor HTTP API",
		Long: `Serve the advisor endpoints used by the mobile app:

  POST /api/advisor/chat              streamed answers (server-sent events)
  POST /api/advisor/survey-analysis   onboarding survey analysis
  POST /api/advisor/behavior-summary  spending summary for transactions
  GET  /api/advisor/profile           stored behavioral profile
  POST /api/advisor/regret            regret scores for transactions
  GET  /api/advisor/regret?ids=...    stored regret scores
  GET  /metrics, /healthz`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default from server.addr)")
	_ = viper.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	v := viper.GetViper()

	if v.GetString(config.KeyLogLevel) != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	client, err := createLLMClient()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	zones, err := loadDangerZones()
	if err != nil {
		return err
	}

	c := buildComponents(client)
	srv, err := server.New(server.Deps{
		Advisor:     c.advisor,
		Survey:      c.survey,
		Summarizer:  c.summarizer,
		Regret:      c.regret,
		Store:       store,
		DangerZones: zones,
		Logger:      slog.Default(),
	}, server.Config{
		Addr:            v.GetString(config.KeyServerAddr),
		DangerZoneLimit: v.GetInt(config.KeyDangerZoneLimit),
	})
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}
