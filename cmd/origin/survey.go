package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/origin/internal/advisor"
	"github.com/Veraticus/origin/internal/cli"
	"github.com/Veraticus/origin/internal/common"
	"github.com/Veraticus/origin/internal/config"
)

func surveyCmd() *cobra.Command {
	var answersPath, financial string
	var asJSON, dryRun bool

	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Analyze onboarding survey answers into a behavioral profile",
		Long: `Read survey answers from a JSON object (question id to answer) and ask the
complex-reasoning model for a behavioral profile. The profile is saved and used
as survey context in later conversations.

When the model call fails a generic profile is printed and nothing is saved.`,
		Example: `  origin survey --answers answers.json
  echo '{"goal":"Save for a house","regret":["Dining out","Shopping"]}' | origin survey --answers -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			answers, err := readAnswers(answersPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			financialContext, err := readInline(financial)
			if err != nil {
				return err
			}

			client, err := createLLMClient()
			if err != nil {
				return err
			}
			c := buildComponents(client)

			analysis, analyzeErr := cli.WithSpinner(ctx, cmd.ErrOrStderr(), "Analyzing survey...",
				func(ctx context.Context) (advisor.SurveyAnalysis, error) {
					return c.survey.Analyze(ctx, answers, financialContext)
				})
			fallback := analyzeErr != nil
			if fallback {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning("Survey analysis failed, showing a generic profile: "+analyzeErr.Error()))
				analysis = advisor.FallbackSurvey()
			}

			if !fallback && !dryRun {
				store, err := initStorage(ctx)
				if err != nil {
					return fmt.Errorf("failed to initialize storage: %w", err)
				}
				defer func() { _ = store.Close() }()

				if err := store.SaveProfile(ctx, analysis.SpendingRegret, analysis.UserGoals, analysis.TopCategories); err != nil {
					return fmt.Errorf("failed to save profile: %w", err)
				}
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), analysis)
			}
			printAnalysis(cmd.OutOrStdout(), analysis)
			if !fallback && !dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Profile saved"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&answersPath, "answers", "", "JSON file with survey answers, or - for stdin")
	cmd.Flags().StringVar(&financial, "financial-context", "", "financial context, or @file to read it from a file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the analysis as JSON")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "analyze without saving the profile")
	_ = cmd.MarkFlagRequired("answers")

	return cmd
}

// readAnswers decodes a survey answer object from a file or stdin.
func readAnswers(path string, stdin io.Reader) (map[string]string, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(config.ExpandPath(path))
		if err != nil {
			return nil, fmt.Errorf("failed to open answers: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, common.NewUserError("survey answers must be a JSON object", err)
	}
	return advisor.NormalizeAnswers(raw), nil
}

func printAnalysis(w io.Writer, analysis advisor.SurveyAnalysis) {
	body := cli.RenderPairs([][2]string{
		{"Goals", analysis.UserGoals},
		{"Regret", analysis.SpendingRegret},
		{"Top categories", strings.Join(analysis.TopCategories, ", ")},
	})
	fmt.Fprintln(w, cli.RenderBox(cli.ChartIcon+" Behavioral profile", body))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
