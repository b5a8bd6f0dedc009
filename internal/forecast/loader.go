package forecast

import (
	"context"
	"time"

	"revenuecast/internal/observability"
	"revenuecast/internal/postgres"
	"revenuecast/pkg/errors"
	"revenuecast/pkg/models"
)

const martQuery = `SELECT subscription_month, monthly_recurring_revenue FROM public.fact_monthly_revenue ORDER BY subscription_month`

// LoadSeries queries the monthly revenue mart ascending by month and
// reshapes it into the canonical two-column series expected by the engine.
// Timezone offsets are stripped: the store and the forecast both operate in
// naive calendar time. An empty mart is rejected explicitly.
func LoadSeries(ctx context.Context, db *postgres.Service) (models.Series, error) {
	var series models.Series

	rows, err := db.Query(ctx, martQuery)
	if err != nil {
		return series, errors.DataLoadError("Failed to query fact_monthly_revenue", err)
	}
	defer rows.Close()

	for rows.Next() {
		var month time.Time
		var revenue float64
		if err := rows.Scan(&month, &revenue); err != nil {
			return models.Series{}, errors.DataLoadError("Failed to scan mart row", err)
		}
		series.DS = append(series.DS, stripTimezone(month))
		series.Y = append(series.Y, revenue)
	}
	if err := rows.Err(); err != nil {
		return models.Series{}, errors.DataLoadError("Failed to iterate mart rows", err)
	}

	if series.Len() == 0 {
		return models.Series{}, errors.DataLoadError("fact_monthly_revenue returned no rows, nothing to forecast", nil)
	}

	series = fillMonthlyGaps(series)

	observability.Default().WithField("stage", "load").
		Info("loaded %d monthly observations from fact_monthly_revenue", series.Len())
	return series, nil
}

// fillMonthlyGaps regularizes the series onto a contiguous monthly grid.
// The aggregation introduces no gaps itself; a missing month means no
// subscription activity started then, which contributes zero revenue.
func fillMonthlyGaps(series models.Series) models.Series {
	if series.Len() < 2 {
		return series
	}

	filled := models.Series{
		DS: make([]time.Time, 0, series.Len()),
		Y:  make([]float64, 0, series.Len()),
	}

	next := series.DS[0]
	for i := 0; i < series.Len(); i++ {
		for next.Before(series.DS[i]) {
			filled.DS = append(filled.DS, next)
			filled.Y = append(filled.Y, 0)
			next = next.AddDate(0, 1, 0)
		}
		filled.DS = append(filled.DS, series.DS[i])
		filled.Y = append(filled.Y, series.Y[i])
		next = series.DS[i].AddDate(0, 1, 0)
	}

	return filled
}

// stripTimezone re-anchors a timestamp at UTC midnight of the same calendar
// date, discarding any offset the driver attached.
func stripTimezone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
