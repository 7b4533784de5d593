package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/origin/internal/advisor"
	"github.com/Veraticus/origin/internal/cli"
	"github.com/Veraticus/origin/internal/model"
)

func summarizeCmd() *cobra.Command {
	var source transactionSource

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize recent spending behavior",
		Long: `Summarize the most recent transactions in two or three sentences, using the
stored behavioral profile for context.`,
		Example: `  origin summarize --ofx ~/Downloads/checking.qfx
  origin summarize --plaid --days 14`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			txns, err := source.load(ctx)
			if err != nil {
				return err
			}
			slog.Debug("transactions loaded", "count", len(txns))

			profile, err := loadProfile(ctx)
			if err != nil {
				return err
			}

			client, err := createLLMClient()
			if err != nil {
				return err
			}
			c := buildComponents(client)

			summary, err := cli.WithSpinner(ctx, cmd.ErrOrStderr(), "Summarizing transactions...",
				func(ctx context.Context) (string, error) {
					return c.summarizer.Summarize(ctx, txns, profile)
				})
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning("Summary failed: "+err.Error()))
				summary = advisor.SummaryFallbackMessage
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), summary)
			return err
		},
	}
	source.register(cmd)
	return cmd
}

// loadProfile reads the stored profile; nil means none has been saved.
func loadProfile(ctx context.Context) (*model.UserProfile, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	profile, err := store.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}
