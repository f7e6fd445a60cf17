package cmd

import (
	"github.com/spf13/cobra"
	"github.com/warungops/warungops/internal/repositories/postgres"
	"github.com/warungops/warungops/internal/seed"
)

var (
	seedDays int
	seedRand int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with a demo menu and order history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStore(); err != nil {
			return err
		}
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.closer()

		seeder := seed.New(
			postgres.NewOrderRepository(app.pool),
			postgres.NewMenuItemRepository(app.pool),
			seedRand,
		)
		return seeder.Run(cmd.Context(), storeID, outletPtr(), seedDays)
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedDays, "days", 30, "days of order history to generate")
	seedCmd.Flags().Int64Var(&seedRand, "seed", 42, "random seed")
	rootCmd.AddCommand(seedCmd)
}
