package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	forecastDays  int
	reconcileDate string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Predict upcoming sales and stock needs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStore(); err != nil {
			return err
		}
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.closer()

		result, err := app.engine.GetForecast(cmd.Context(), storeID, outletPtr(), forecastDays)
		if err != nil {
			return fail(err)
		}
		return printJSON(result)
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Record actuals against a past forecast and score its accuracy",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStore(); err != nil {
			return err
		}
		date, err := time.Parse("2006-01-02", reconcileDate)
		if err != nil {
			return fmt.Errorf("invalid --date, expected YYYY-MM-DD: %w", err)
		}
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.closer()

		if err := app.engine.ReconcileForecast(cmd.Context(), storeID, outletPtr(), date); err != nil {
			return fail(err)
		}
		fmt.Printf("reconciled forecast for %s\n", reconcileDate)
		return nil
	},
}

func init() {
	forecastCmd.Flags().IntVar(&forecastDays, "days", 7, "days ahead to forecast (1-14)")
	reconcileCmd.Flags().StringVar(&reconcileDate, "date", time.Now().AddDate(0, 0, -1).Format("2006-01-02"), "forecast date to reconcile")
	forecastCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(forecastCmd)
}
