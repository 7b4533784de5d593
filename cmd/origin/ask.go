package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/origin/internal/advisor"
	"github.com/Veraticus/origin/internal/cli"
	"github.com/Veraticus/origin/internal/common"
	"github.com/Veraticus/origin/internal/config"
	"github.com/Veraticus/origin/internal/model"
)

// contextFlags are the context options shared by ask and chat.
type contextFlags struct {
	financial   string
	survey      string
	noProfile   bool
	noDanger    bool
	plainOutput bool
}

func (f *contextFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.financial, "financial-context", "", "financial context, or @file to read it from a file")
	cmd.Flags().StringVar(&f.survey, "survey-context", "", "survey context (default: the stored profile)")
	cmd.Flags().BoolVar(&f.noProfile, "no-profile", false, "do not fill survey context from the stored profile")
	cmd.Flags().BoolVar(&f.noDanger, "no-danger-zones", false, "do not append danger-zone context")
	cmd.Flags().BoolVar(&f.plainOutput, "plain", false, "print raw text without styling")
}

// resolve builds the request context the same way the chat endpoint does.
func (f *contextFlags) resolve(cmd *cobra.Command) (advisor.Request, error) {
	ctx := cmd.Context()
	req := advisor.Request{SurveyContext: f.survey}

	financial, err := readInline(f.financial)
	if err != nil {
		return req, err
	}
	req.FinancialContext = financial

	if req.SurveyContext == "" && !f.noProfile {
		store, err := initStorage(ctx)
		if err != nil {
			return req, fmt.Errorf("failed to initialize storage: %w", err)
		}
		profile, err := store.GetProfile(ctx)
		_ = store.Close()
		if err != nil {
			return req, fmt.Errorf("failed to load profile: %w", err)
		}
		req.SurveyContext = profile.ContextSummary()
	}

	if !f.noDanger {
		zones, err := loadDangerZones()
		if err != nil {
			return req, err
		}
		req.FinancialContext = zones.AppendContext(req.FinancialContext, viper.GetInt(config.KeyDangerZoneLimit))
	}
	return req, nil
}

// readInline returns value, or the contents of the file when value starts with @.
func readInline(value string) (string, error) {
	if !strings.HasPrefix(value, "@") {
		return value, nil
	}
	data, err := os.ReadFile(config.ExpandPath(strings.TrimPrefix(value, "@")))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", value, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func askCmd() *cobra.Command {
	var flags contextFlags

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and stream the answer",
		Long: `Ask one question. The question is routed to the fast, quantitative or
complex model tier, or runs the three-step analysis workflow when it asks to
both analyze spending and build a plan.`,
		Example: `  origin ask "How much did I spend on food?"
  origin ask --financial-context @balances.txt "Analyze my spending and create a savings plan"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return common.NewUserError("question cannot be empty", common.ErrEmptyQuestion)
			}

			req, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			req.Messages = []model.Message{model.UserMessage(question)}

			client, err := createLLMClient()
			if err != nil {
				return err
			}
			c := buildComponents(client)

			renderer := cli.NewChunkRenderer(cmd.OutOrStdout(), flags.plainOutput)
			_, err = renderer.Render(c.advisor.Respond(cmd.Context(), req))
			return err
		},
	}
	flags.register(cmd)
	return cmd
}
