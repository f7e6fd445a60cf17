package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	pricingItems  []string
	applyID       string
	applyReject   bool
	applyPrice    int64
	applyHasPrice bool
)

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Suggest menu price changes from sales velocity and margins",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStore(); err != nil {
			return err
		}
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.closer()

		recs, err := app.engine.GetPricingRecommendations(cmd.Context(), storeID, outletPtr(), pricingItems)
		if err != nil {
			return fail(err)
		}
		if len(recs) == 0 {
			fmt.Println("No price changes recommended right now.")
			return nil
		}
		return printJSON(recs)
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Approve or reject a pending recommendation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if applyID == "" {
			return fmt.Errorf("--id is required")
		}
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.closer()

		var override *int64
		if applyHasPrice {
			override = &applyPrice
		}
		rec, err := app.engine.ApplyRecommendation(cmd.Context(), applyID, !applyReject, override)
		if err != nil {
			return fail(err)
		}
		return printJSON(rec)
	},
}

func init() {
	pricingCmd.Flags().StringSliceVar(&pricingItems, "items", nil, "restrict to these menu item ids")
	applyCmd.Flags().StringVar(&applyID, "id", "", "recommendation id")
	applyCmd.Flags().BoolVar(&applyReject, "reject", false, "reject instead of approve")
	applyCmd.Flags().Int64Var(&applyPrice, "price", 0, "apply this price instead of the recommended one")
	applyCmd.PreRun = func(cmd *cobra.Command, args []string) {
		applyHasPrice = cmd.Flags().Changed("price")
	}
	pricingCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(pricingCmd)
}
