package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/smartpark/core/model"
	"github.com/kilianp07/smartpark/pkg/export"
)

var (
	scheduleCSV  string
	scheduleJSON string
	scheduleHTML string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print or export the weekly pricing schedule",
	RunE:  schedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleCSV, "csv", "", "write the schedule as CSV to this file")
	scheduleCmd.Flags().StringVar(&scheduleJSON, "json", "", "write the schedule as JSON to this file")
	scheduleCmd.Flags().StringVar(&scheduleHTML, "html", "", "write an occupancy and price chart to this file")
	rootCmd.AddCommand(scheduleCmd)
}

func schedule(cmd *cobra.Command, args []string) error {
	_, svc, err := pricingService()
	if err != nil {
		return err
	}
	s, err := svc.Schedule(cmd.Context())
	if err != nil {
		return err
	}
	exports := []struct {
		path  string
		write func(*os.File) error
	}{
		{scheduleCSV, func(f *os.File) error { return export.WriteCSV(f, s) }},
		{scheduleJSON, func(f *os.File) error { return export.WriteJSON(f, s) }},
		{scheduleHTML, func(f *os.File) error { return export.WriteHTML(f, s) }},
	}
	written := false
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := writeFile(e.path, e.write); err != nil {
			return err
		}
		written = true
	}
	if written {
		return nil
	}
	return printSchedule(cmd, s)
}

func printSchedule(cmd *cobra.Command, s model.WeeklySchedule) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tHOUR\tTIER\tPRICE\tOCCUPANCY")
	for _, day := range model.DayNames {
		for _, e := range s[day] {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.1f\n", day, e.HourFormatted(), e.Tier, e.Price, e.PredictedOccupancy)
		}
	}
	return tw.Flush()
}
