package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"revenuecast/internal/config"
	"revenuecast/pkg/errors"
)

// Service provides PostgreSQL database operations
type Service struct {
	db           *sql.DB
	config       Config
	connected    bool
	errorHandler *errors.ErrorHandler
}

// Config holds PostgreSQL connection configuration
type Config struct {
	Host     string
	Port     string
	DBName   string
	User     string
	Password string
	SSLMode  string
	Timeout  time.Duration
}

// ConfigFromCredentials builds a connection configuration from resolved
// environment credentials
func ConfigFromCredentials(creds *config.Credentials) Config {
	return Config{
		Host:     creds.Host,
		Port:     creds.Port,
		DBName:   creds.DBName,
		User:     creds.User,
		Password: creds.Password,
		SSLMode:  "disable",
	}
}

// NewService creates a new PostgreSQL service
func NewService(cfg Config) *Service {
	return &Service{
		config:       cfg,
		errorHandler: errors.GetGlobalErrorHandler(),
	}
}

// NewServiceWithDB wraps an existing database handle, used by tests
func NewServiceWithDB(db *sql.DB) *Service {
	return &Service{
		db:           db,
		connected:    true,
		errorHandler: errors.GetGlobalErrorHandler(),
	}
}

// Connect establishes a connection to PostgreSQL. There is no retry: a
// failed connection fails the run.
func (s *Service) Connect() error {
	if s.connected {
		return nil
	}

	sslMode := s.config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
		s.config.Host,
		s.config.Port,
		s.config.DBName,
		s.config.User,
		s.config.Password,
		sslMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return errors.ConnectionError("Failed to open PostgreSQL connection", err).
			WithContext("host", s.config.Host).
			WithContext("database", s.config.DBName)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	ctx, cancel := s.getContext()
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()

		if strings.Contains(err.Error(), "password authentication") {
			return errors.New(errors.ErrCodeAuthenticationFailed, "Authentication failed").
				WithContext("user", s.config.User).
				WithSuggestions(
					"Verify DB_USER and DB_PASS",
					"Check pg_hba.conf authentication rules for this user",
				)
		}

		return errors.ConnectionError("Failed to connect to PostgreSQL", err).
			WithContext("host", s.config.Host).
			WithContext("port", s.config.Port)
	}

	s.db = db
	s.connected = true
	return nil
}

// Close closes the database connection
func (s *Service) Close() error {
	if !s.connected {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	s.connected = false
	return nil
}

// ExecuteSQL executes one or more SQL statements within a single
// transaction. Any failure rolls back every statement.
func (s *Service) ExecuteSQL(ctx context.Context, statements ...string) error {
	if !s.connected {
		return errors.New(errors.ErrCodeConnectionFailed, "Not connected to database").
			WithSuggestions("Call Connect() before executing SQL")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to begin transaction")
	}

	txHandler := s.errorHandler.NewTransactionHandler(tx.Rollback)

	return txHandler.Execute(func() error {
		for i, stmt := range statements {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}

			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return errors.SQLError(
					fmt.Sprintf("Failed to execute statement %d", i+1),
					stmt,
					err,
				).WithContext("statement_index", i+1).
					WithContext("total_statements", len(statements))
			}
		}

		if err := tx.Commit(); err != nil {
			return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to commit transaction")
		}

		return nil
	})
}

// Query executes a query and returns results
func (s *Service) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if !s.connected {
		return nil, fmt.Errorf("not connected to database")
	}

	return s.db.QueryContext(ctx, query, args...)
}

// BeginTransaction starts a new transaction
func (s *Service) BeginTransaction(ctx context.Context) (*sql.Tx, error) {
	if !s.connected {
		return nil, fmt.Errorf("not connected to database")
	}

	return s.db.BeginTx(ctx, nil)
}

// TestConnection verifies the database connection is alive
func (s *Service) TestConnection() error {
	if !s.connected {
		if err := s.Connect(); err != nil {
			return err
		}
	}

	ctx, cancel := s.getContext()
	defer cancel()

	return s.db.PingContext(ctx)
}

// GetDB returns the underlying database handle
func (s *Service) GetDB() *sql.DB {
	return s.db
}

func (s *Service) getContext() (context.Context, context.CancelFunc) {
	timeout := s.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// ValidateConfig validates the PostgreSQL configuration
func ValidateConfig(cfg Config) error {
	if cfg.Host == "" {
		return fmt.Errorf("host is required")
	}
	if cfg.Port == "" {
		return fmt.Errorf("port is required")
	}
	if cfg.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if cfg.User == "" {
		return fmt.Errorf("user is required")
	}
	if cfg.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}
