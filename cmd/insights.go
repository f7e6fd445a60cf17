package cmd

import (
	"github.com/spf13/cobra"
)

var (
	insightsPeriod  string
	insightsRefresh bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Summarize recent business performance",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStore(); err != nil {
			return err
		}
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.closer()

		resp, err := app.engine.GetInsights(cmd.Context(), storeID, outletPtr(), insightsPeriod, insightsRefresh)
		if err != nil {
			return fail(err)
		}
		return printJSON(resp)
	},
}

func init() {
	insightsCmd.Flags().StringVar(&insightsPeriod, "period", "daily", "daily, weekly or monthly")
	insightsCmd.Flags().BoolVar(&insightsRefresh, "refresh", false, "recompute even when a cached bundle exists")
	rootCmd.AddCommand(insightsCmd)
}
