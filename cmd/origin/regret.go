package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Veraticus/origin/internal/cli"
	"github.com/Veraticus/origin/internal/model"
)

func regretCmd() *cobra.Command {
	var source transactionSource
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "regret",
		Short: "Score how likely you are to regret recent purchases",
		Long: `Score each outgoing transaction from 0 to 100 for predicted regret, using the
stored behavioral profile. Scores are saved; transactions that already have a
score are not sent to the model again.`,
		Example: `  origin regret --ofx ~/Downloads/card.qfx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			txns, err := source.load(ctx)
			if err != nil {
				return err
			}
			expenses := model.Expenses(txns)
			if len(expenses) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No purchases to score"))
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			profile, err := store.GetProfile(ctx)
			if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}

			client, err := createLLMClient()
			if err != nil {
				return err
			}
			c := buildComponents(client)

			annotations, err := cli.WithSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Scoring %d purchases...", len(expenses)),
				func(ctx context.Context) (map[string]model.RegretAnnotation, error) {
					return c.regret.AnnotateMissing(ctx, store, expenses, profile)
				})
			if err != nil {
				return fmt.Errorf("failed to score transactions: %w", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), annotations)
			}
			printRegrets(cmd.OutOrStdout(), expenses, annotations)
			return nil
		},
	}
	source.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print annotations as JSON keyed by transaction id")
	return cmd
}

// printRegrets lists scored transactions, most regretted first.
func printRegrets(w io.Writer, txns []model.Transaction, annotations map[string]model.RegretAnnotation) {
	scored := make([]model.Transaction, 0, len(annotations))
	for _, t := range txns {
		if _, ok := annotations[t.ID]; ok {
			scored = append(scored, t)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return annotations[scored[i].ID].Score > annotations[scored[j].ID].Score
	})

	for _, t := range scored {
		a := annotations[t.ID]
		line := fmt.Sprintf("%3d  %-28s $%8.2f  %s", a.Score, t.DisplayName(), t.Amount, a.Reason)
		switch {
		case a.Score >= 70:
			line = cli.ErrorStyle.Render(line)
		case a.Score >= 40:
			line = cli.WarningStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}
