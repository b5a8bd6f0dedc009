package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenuecast/internal/config"
	"revenuecast/pkg/errors"
)

func TestConfigFromCredentials(t *testing.T) {
	creds := &config.Credentials{
		Host:     "db.internal",
		Port:     "5433",
		DBName:   "saas_metrics",
		User:     "pipeline",
		Password: "secret",
	}

	cfg := ConfigFromCredentials(creds)

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "5433", cfg.Port)
	assert.Equal(t, "saas_metrics", cfg.DBName)
	assert.Equal(t, "pipeline", cfg.User)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "disable", cfg.SSLMode)
}

func TestValidateConfig(t *testing.T) {
	valid := Config{Host: "localhost", Port: "5432", DBName: "db", User: "u", Password: "p"}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "missing host", mutate: func(c *Config) { c.Host = "" }, wantError: "host is required"},
		{name: "missing port", mutate: func(c *Config) { c.Port = "" }, wantError: "port is required"},
		{name: "missing dbname", mutate: func(c *Config) { c.DBName = "" }, wantError: "database name is required"},
		{name: "missing user", mutate: func(c *Config) { c.User = "" }, wantError: "user is required"},
		{name: "missing password", mutate: func(c *Config) { c.Password = "" }, wantError: "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := ValidateConfig(cfg)
			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantError)
			}
		})
	}
}

func TestExecuteSQLCommitsAllStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS raw_saas_metrics").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	service := NewServiceWithDB(db)
	err = service.ExecuteSQL(context.Background(),
		"CREATE TABLE IF NOT EXISTS raw_saas_metrics (customer_id INT PRIMARY KEY)",
		"CREATE INDEX idx_start ON raw_saas_metrics (subscription_start_date)",
	)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteSQLRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO").
		WillReturnError(fmt.Errorf("pq: relation does not exist"))
	mock.ExpectRollback()

	service := NewServiceWithDB(db)
	err = service.ExecuteSQL(context.Background(),
		"CREATE TABLE t (id INT)",
		"INSERT INTO missing VALUES (1)",
	)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSQLExecution, errors.GetErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteSQLRequiresConnection(t *testing.T) {
	service := NewService(Config{Host: "localhost", Port: "5432", DBName: "db", User: "u", Password: "p"})

	err := service.ExecuteSQL(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConnectionFailed, errors.GetErrorCode(err))
}

func TestCloseIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	service := NewServiceWithDB(db)
	assert.NoError(t, service.Close())
	assert.NoError(t, service.Close())
}
