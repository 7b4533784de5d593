package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/origin/internal/advisor"
	"github.com/Veraticus/origin/internal/cli"
)

func profileCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the stored behavioral profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := loadProfile(cmd.Context())
			if err != nil {
				return err
			}
			if profile == nil {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(`No profile yet. Run "origin survey --answers <file>" first.`))
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), profile)
			}
			printAnalysis(cmd.OutOrStdout(), advisor.SurveyAnalysis{
				SpendingRegret: profile.SpendingRegret,
				UserGoals:      profile.UserGoals,
				TopCategories:  profile.TopCategories,
			})
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Updated "+profile.UpdatedAt.Local().Format("2006-01-02 15:04")))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the profile as JSON")
	return cmd
}
