package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/smartpark/core/model"
)

// WriteHTML renders one chart per day with the predicted occupancy and the
// hourly price on a secondary axis.
func WriteHTML(w io.Writer, s model.WeeklySchedule) error {
	page := components.NewPage()
	page.PageTitle = "Parking pricing schedule"
	for _, day := range model.DayNames {
		entries, ok := s[day]
		if !ok {
			continue
		}
		page.AddCharts(dayChart(day, entries))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %v", err)
	}
	return nil
}

func dayChart(day string, entries []model.ScheduleEntry) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: day}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Occupancy"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
	)
	line.ExtendYAxis(opts.YAxis{Name: "Price"})

	hours := make([]string, 0, len(entries))
	occupancy := make([]opts.LineData, 0, len(entries))
	prices := make([]opts.LineData, 0, len(entries))
	for _, e := range entries {
		hours = append(hours, e.HourFormatted())
		occupancy = append(occupancy, opts.LineData{Value: e.PredictedOccupancy})
		prices = append(prices, opts.LineData{Value: e.Price, Name: e.Tier.String()})
	}
	line.SetXAxis(hours).
		AddSeries("Occupancy", occupancy).
		AddSeries("Price", prices, charts.WithLineChartOpts(opts.LineChart{Step: "end", YAxisIndex: 1}))
	return line
}
