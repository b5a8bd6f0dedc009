package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Connection errors (1xxx)
	ErrCodeConnectionFailed     ErrorCode = "RVC1001"
	ErrCodeAuthenticationFailed ErrorCode = "RVC1002"

	// Configuration errors (2xxx)
	ErrCodeConfigMissing ErrorCode = "RVC2001"
	ErrCodeConfigInvalid ErrorCode = "RVC2002"

	// Ingestion errors (3xxx)
	ErrCodeIngestFileNotFound ErrorCode = "RVC3001"
	ErrCodeIngestMalformed    ErrorCode = "RVC3002"
	ErrCodeIngestConstraint   ErrorCode = "RVC3003"
	ErrCodeIngestFailed       ErrorCode = "RVC3004"

	// Transformation errors (4xxx)
	ErrCodeTransformFailed ErrorCode = "RVC4001"
	ErrCodeSQLTransaction  ErrorCode = "RVC4002"
	ErrCodeSQLExecution    ErrorCode = "RVC4003"

	// Forecast data / fit errors (5xxx)
	ErrCodeDataLoadEmpty       ErrorCode = "RVC5001"
	ErrCodeDataLoadFailed      ErrorCode = "RVC5002"
	ErrCodeInsufficientHistory ErrorCode = "RVC5003"
	ErrCodeFitFailed           ErrorCode = "RVC5004"

	// Publish errors (6xxx)
	ErrCodePublishFailed ErrorCode = "RVC6001"

	// System errors (9xxx)
	ErrCodeInternal         ErrorCode = "RVC9001"
	ErrCodeFileOperation    ErrorCode = "RVC9002"
	ErrCodeValidationFailed ErrorCode = "RVC9003"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // System failure, requires immediate attention
	SeverityError    ErrorSeverity = "ERROR"    // Operation failed, but system continues
	SeverityWarning  ErrorSeverity = "WARNING"  // Operation succeeded with issues
	SeverityInfo     ErrorSeverity = "INFO"     // Informational, not an error
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Stack       string
	Timestamp   time.Time
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  SeverityError,
		Context:   make(map[string]interface{}),
		Stack:     captureStack(),
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// If wrapping another AppError, inherit its context
	if ae, ok := err.(*AppError); ok {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// captureStack captures the current stack trace
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			b.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return b.String()
}

// Common error constructors

// ConfigurationError creates an error for missing or invalid environment
// configuration. It fires before any network or file I/O is attempted.
func ConfigurationError(message string, missing ...string) *AppError {
	err := New(ErrCodeConfigMissing, message).
		WithSuggestions(
			"Ensure DB_HOST, DB_PORT, DB_NAME, DB_USER, and DB_PASS are set",
			"Export the variables or place them in a .env file in the working directory",
		)
	if len(missing) > 0 {
		_ = err.WithContext("missing", strings.Join(missing, ", "))
	}
	return err
}

// ConnectionError creates a database connection error
func ConnectionError(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeConnectionFailed, message).
		WithSuggestions(
			"Check that the PostgreSQL server is running and reachable",
			"Verify host and port in the DB_HOST and DB_PORT variables",
			"Check firewall settings",
		)
}

// IngestionError creates an error for a failed raw data load. The whole
// batch is rolled back, so no partial ingestion survives this error.
func IngestionError(message string, cause error) *AppError {
	if cause == nil {
		return New(ErrCodeIngestFailed, message)
	}
	err := Wrap(cause, ErrCodeIngestFailed, message)

	lower := strings.ToLower(cause.Error())
	switch {
	case strings.Contains(lower, "no such file"), strings.Contains(lower, "cannot find"):
		err.Code = ErrCodeIngestFileNotFound
		_ = err.WithSuggestions("Verify the input file path passed to ingest")
	case strings.Contains(lower, "duplicate key"), strings.Contains(lower, "unique constraint"):
		err.Code = ErrCodeIngestConstraint
		_ = err.WithSuggestions(
			"A customer_id in the input already exists in raw_saas_metrics",
			"Remove duplicates from the input file or reset the raw table",
		)
	case strings.Contains(lower, "invalid character"), strings.Contains(lower, "unmarshal"):
		err.Code = ErrCodeIngestMalformed
		_ = err.WithSuggestions("The input must be a JSON array of record objects")
	}

	return err
}

// TransformationError creates an error for a failed dbt invocation, carrying
// the engine's own diagnostic output verbatim.
func TransformationError(message, engineOutput string, cause error) *AppError {
	return Wrap(cause, ErrCodeTransformFailed, message).
		WithContext("engine_output", engineOutput).
		WithSuggestions(
			"Inspect the dbt output for the failing model",
			"Verify profiles.yml points at the same database used for ingestion",
		)
}

// DataLoadError creates an error for an empty or malformed mart series
func DataLoadError(message string, cause error) *AppError {
	if cause == nil {
		return New(ErrCodeDataLoadEmpty, message).
			WithSuggestions(
				"Run the transformation stage before forecasting",
				"Check that raw_saas_metrics contains rows",
			)
	}
	return Wrap(cause, ErrCodeDataLoadFailed, message)
}

// InsufficientHistoryError creates an error for a series too short to
// estimate yearly seasonality.
func InsufficientHistoryError(points, minimum int) *AppError {
	return New(ErrCodeInsufficientHistory,
		fmt.Sprintf("series has %d historical points, need at least %d for seasonal fitting", points, minimum)).
		WithContext("points", points).
		WithContext("minimum", minimum).
		WithSuggestions("Accumulate more monthly history before forecasting")
}

// PublishError creates an error for a failed forecast table write
func PublishError(message string, cause error) *AppError {
	err := New(ErrCodePublishFailed, message)
	if cause != nil {
		err = Wrap(cause, ErrCodePublishFailed, message)
	}
	return err.WithSuggestions(
		"Verify the database user may drop and create tables in the public schema",
	)
}

// SQLError creates an SQL execution error
func SQLError(message string, query string, cause error) *AppError {
	return Wrap(cause, ErrCodeSQLExecution, message).
		WithContext("query", truncateString(query, 200))
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
