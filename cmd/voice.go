package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var voiceCmd = &cobra.Command{
	Use:   "voice [transcript]",
	Short: "Parse a spoken Indonesian order transcript into order lines",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireStore(); err != nil {
			return err
		}
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.closer()

		transcript := strings.Join(args, " ")
		result, err := app.engine.ParseVoiceOrder(cmd.Context(), storeID, outletPtr(), transcript)
		if err != nil {
			return fail(err)
		}
		if len(result.Unrecognized) > 0 {
			fmt.Printf("Unrecognized: %s\n", strings.Join(result.Unrecognized, ", "))
		}
		return printJSON(result)
	},
}

func init() {
	rootCmd.AddCommand(voiceCmd)
}
