package ingest

import (
	"context"
	"encoding/json"
	"os"

	"revenuecast/internal/common"
	"revenuecast/internal/observability"
	"revenuecast/internal/postgres"
	"revenuecast/pkg/errors"
	"revenuecast/pkg/models"
)

// Schema for the raw metrics table. CREATE TABLE IF NOT EXISTS keeps the
// statement idempotent and never touches existing data.
const createRawTableSQL = `
CREATE TABLE IF NOT EXISTS raw_saas_metrics (
    customer_id INT PRIMARY KEY,
    subscription_start_date DATE,
    monthly_recurring_revenue DECIMAL,
    churn_date DATE,
    plan_type VARCHAR(50)
)`

const insertRawRecordSQL = `
INSERT INTO raw_saas_metrics (
    customer_id,
    subscription_start_date,
    monthly_recurring_revenue,
    churn_date,
    plan_type
) VALUES ($1, $2, $3, $4, $5)`

// Service loads raw subscription records into the raw metrics table
type Service struct {
	db     *postgres.Service
	logger *observability.Logger
}

// NewService creates a new ingestion service
func NewService(db *postgres.Service) *Service {
	return &Service{
		db:     db,
		logger: observability.Default().WithField("stage", "ingest"),
	}
}

// EnsureSchema idempotently creates the raw metrics table
func (s *Service) EnsureSchema(ctx context.Context) error {
	if err := s.db.ExecuteSQL(ctx, createRawTableSQL); err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to create raw_saas_metrics table")
	}
	s.logger.Info("table raw_saas_metrics is ready")
	return nil
}

// Ingest reads a JSON array of records from filePath and inserts every row
// within one transaction. Any single failure rolls back the whole batch.
// Returns the number of records committed.
func (s *Service) Ingest(ctx context.Context, filePath string) (int, error) {
	cleanedPath, err := common.CleanPath(filePath)
	if err != nil {
		return 0, errors.IngestionError("Invalid input file path", err)
	}

	data, err := os.ReadFile(cleanedPath) // #nosec G304 - path is validated
	if err != nil {
		return 0, errors.IngestionError("Failed to read input file", err).
			WithContext("file", filePath)
	}

	var records []models.RawMetricRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, errors.IngestionError("Failed to parse input file", err).
			WithContext("file", filePath)
	}

	tx, err := s.db.BeginTransaction(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to begin ingestion transaction")
	}

	stmt, err := tx.PrepareContext(ctx, insertRawRecordSQL)
	if err != nil {
		tx.Rollback()
		return 0, errors.IngestionError("Failed to prepare insert statement", err)
	}
	defer stmt.Close()

	for i, record := range records {
		_, err := stmt.ExecContext(ctx,
			nullableInt(record.CustomerID),
			nullableString(record.SubscriptionStartDate),
			nullableFloat(record.MonthlyRecurringRev),
			nullableString(record.ChurnDate),
			nullableString(record.PlanType),
		)
		if err != nil {
			tx.Rollback()
			return 0, errors.IngestionError("Failed to insert record, batch rolled back", err).
				WithContext("record_index", i).
				WithContext("total_records", len(records))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.IngestionError("Failed to commit ingestion batch", err)
	}

	s.logger.Info("ingested %d records into raw_saas_metrics", len(records))
	return len(records), nil
}

// Missing input fields insert as NULL rather than zero values.

func nullableInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
