package models

import "time"

// RawMetricRecord is one customer subscription row from the input file.
// Pointer fields distinguish absent input fields, which are stored as NULL.
type RawMetricRecord struct {
	CustomerID            *int64   `json:"customer_id"`
	SubscriptionStartDate *string  `json:"subscription_start_date"`
	MonthlyRecurringRev   *float64 `json:"monthly_recurring_revenue"`
	ChurnDate             *string  `json:"churn_date"`
	PlanType              *string  `json:"plan_type"`
}

// Series is the canonical two-column time series consumed by the forecast
// engine: month-start timestamps in naive calendar time and the aggregated
// revenue value for each.
type Series struct {
	DS []time.Time
	Y  []float64
}

// Len returns the number of observations in the series
func (s Series) Len() int {
	return len(s.DS)
}

// ForecastPoint is one persisted forecast row
type ForecastPoint struct {
	SubscriptionMonth time.Time
	ForecastedMRR     float64
	YhatLower         float64
	YhatUpper         float64
}
