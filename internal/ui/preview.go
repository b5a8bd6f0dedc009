package ui

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"revenuecast/pkg/models"
)

// RenderForecastPreview writes the last rows of the forecast as a table.
// The tail is where the horizon lives, so that is what an operator wants
// to eyeball after a run.
func RenderForecastPreview(w io.Writer, points []models.ForecastPoint, rows int) {
	if len(points) == 0 {
		return
	}
	if rows <= 0 || rows > len(points) {
		rows = len(points)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Month", "Forecasted MRR", "Lower", "Upper"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, p := range points[len(points)-rows:] {
		table.Append([]string{
			p.SubscriptionMonth.Format("2006-01"),
			fmt.Sprintf("%.2f", p.ForecastedMRR),
			fmt.Sprintf("%.2f", p.YhatLower),
			fmt.Sprintf("%.2f", p.YhatUpper),
		})
	}

	table.Render()
}
