package forecast

import (
	"context"

	"revenuecast/internal/observability"
	"revenuecast/internal/postgres"
	"revenuecast/pkg/errors"
	"revenuecast/pkg/models"
)

const (
	dropForecastTableSQL = `DROP TABLE IF EXISTS fact_monthly_revenue_forecast`

	createForecastTableSQL = `
CREATE TABLE fact_monthly_revenue_forecast (
    subscription_month DATE,
    forecasted_mrr NUMERIC,
    yhat_lower NUMERIC,
    yhat_upper NUMERIC
)`

	insertForecastRowSQL = `
INSERT INTO fact_monthly_revenue_forecast (
    subscription_month,
    forecasted_mrr,
    yhat_lower,
    yhat_upper
) VALUES ($1, $2, $3, $4)`
)

// Publish writes the forecast wholesale into fact_monthly_revenue_forecast,
// replacing any prior content. Drop, create, and every insert share one
// transaction, so a failure leaves the previous run's forecast intact.
// Callers relying on forecast history across runs must snapshot the table
// before invoking.
func Publish(ctx context.Context, db *postgres.Service, points []models.ForecastPoint) error {
	if len(points) == 0 {
		return errors.PublishError("refusing to publish an empty forecast", nil)
	}

	tx, err := db.BeginTransaction(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to begin publish transaction")
	}

	if _, err := tx.ExecContext(ctx, dropForecastTableSQL); err != nil {
		tx.Rollback()
		return errors.PublishError("Failed to drop previous forecast table", err)
	}

	if _, err := tx.ExecContext(ctx, createForecastTableSQL); err != nil {
		tx.Rollback()
		return errors.PublishError("Failed to create forecast table", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertForecastRowSQL)
	if err != nil {
		tx.Rollback()
		return errors.PublishError("Failed to prepare forecast insert", err)
	}
	defer stmt.Close()

	for i, point := range points {
		_, err := stmt.ExecContext(ctx,
			point.SubscriptionMonth,
			point.ForecastedMRR,
			point.YhatLower,
			point.YhatUpper,
		)
		if err != nil {
			tx.Rollback()
			return errors.PublishError("Failed to insert forecast row", err).
				WithContext("row_index", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.PublishError("Failed to commit forecast publish", err)
	}

	observability.Default().WithField("stage", "publish").
		Info("published %d forecast rows to fact_monthly_revenue_forecast", len(points))
	return nil
}
