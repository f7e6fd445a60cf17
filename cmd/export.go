package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/warungops/warungops/internal/aggregate"
	"github.com/warungops/warungops/internal/export"
	"github.com/warungops/warungops/internal/repositories/postgres"
)

var exportDays int

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write daily and per-item aggregates as parquet for BI tooling",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStore(); err != nil {
			return err
		}
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.closer()

		agg := aggregate.New(
			postgres.NewOrderRepository(app.pool),
			postgres.NewMenuItemRepository(app.pool),
		)
		end := time.Now().Truncate(24 * time.Hour)
		start := end.AddDate(0, 0, -exportDays)

		daily, err := agg.Daily(cmd.Context(), storeID, outletPtr(), start, end)
		if err != nil {
			return fail(err)
		}
		items, err := agg.ByMenuItem(cmd.Context(), storeID, outletPtr(), start, end)
		if err != nil {
			return fail(err)
		}

		exporter, err := export.NewExporter(app.cfg.Export)
		if err != nil {
			return err
		}
		if err := exporter.WriteDailyAggregates(storeID, daily); err != nil {
			return err
		}
		if err := exporter.WriteItemAggregates(storeID, items); err != nil {
			return err
		}
		fmt.Printf("exported %d daily rows and %d item rows\n", len(daily), len(items))
		return nil
	},
}

func init() {
	exportCmd.Flags().IntVar(&exportDays, "days", 30, "days of history to export, ending yesterday")
	rootCmd.AddCommand(exportCmd)
}
