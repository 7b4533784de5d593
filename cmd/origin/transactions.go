package main

import (
	"github.com/spf13/cobra"
)

func (s *transactionSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.ofxPath, "ofx", "", "OFX/QFX export to read transactions from")
	cmd.Flags().BoolVar(&s.usePlaid, "plaid", false, "fetch recent transactions from the configured Plaid item")
	cmd.Flags().BoolVar(&s.useSimpleFIN, "simplefin", false, "fetch recent transactions through the configured SimpleFIN bridge")
	cmd.Flags().IntVar(&s.days, "days", defaultLookbackDays, "days of history to fetch from Plaid or SimpleFIN")
}
