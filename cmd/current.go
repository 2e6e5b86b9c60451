package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the pricing tier in effect now",
	RunE:  current,
}

func init() {
	rootCmd.AddCommand(currentCmd)
}

func current(cmd *cobra.Command, args []string) error {
	_, svc, err := pricingService()
	if err != nil {
		return err
	}
	cur, err := svc.Current(cmd.Context())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s tier, %.2f per hour (predicted occupancy %.1f%%)\n",
		cur.Day, cur.HourFormatted(), cur.Tier, cur.Price, cur.PredictedOccupancy)
	return err
}
