package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/smartpark/core/model"
)

var peakCount int

var peaksCmd = &cobra.Command{
	Use:   "peaks",
	Short: "Print the busiest hours of every day",
	RunE:  peaks,
}

func init() {
	peaksCmd.Flags().IntVarP(&peakCount, "k", "k", 0, "number of peak hours per day (default from config)")
	rootCmd.AddCommand(peaksCmd)
}

func peaks(cmd *cobra.Command, args []string) error {
	cfg, svc, err := pricingService()
	if err != nil {
		return err
	}
	k := peakCount
	if !cmd.Flags().Changed("k") {
		k = cfg.Pricing.PeakCount
	}
	report, err := svc.Peaks(cmd.Context(), k)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tRANK\tHOUR\tOCCUPANCY")
	for _, day := range model.DayNames {
		for i, p := range report[day] {
			fmt.Fprintf(tw, "%s\t%d\t%d:00\t%.1f\n", day, i+1, p.Hour, p.MeanOccupancy)
		}
	}
	return tw.Flush()
}
