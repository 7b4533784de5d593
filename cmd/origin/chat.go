package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/origin/internal/cli"
	"github.com/Veraticus/origin/internal/config"
	"github.com/Veraticus/origin/internal/tui"
	"github.com/Veraticus/origin/internal/tui/themes"
)

func chatCmd() *cobra.Command {
	var flags contextFlags
	var lineMode bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long: `Open a full-screen chat with the advisor. Each answer is streamed as it is
generated and earlier turns are sent along as conversation history.

Use --line for a simple prompt loop that also works with piped input.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			base, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			client, err := createLLMClient()
			if err != nil {
				return err
			}
			c := buildComponents(client)

			if lineMode || flags.plainOutput {
				handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
				ctx, stop := handler.HandleInterrupts(cmd.Context(), "")
				defer stop()

				chat := cli.NewPlainChat(c.advisor, cmd.InOrStdin(), cmd.OutOrStdout(), base, flags.plainOutput)
				return chat.Run(ctx)
			}

			return tui.Run(cmd.Context(), c.advisor,
				tui.WithContext(base.FinancialContext, base.SurveyContext),
				tui.WithTheme(themes.ByName(viper.GetString(config.KeyTheme))),
			)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&lineMode, "line", false, "use a line-oriented prompt instead of the full-screen UI")
	return cmd
}
