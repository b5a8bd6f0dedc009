package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"revenuecast/pkg/errors"
)

// Credentials is the validated tuple of database connection parameters.
// All five are required; resolution fails fast before any network or
// database I/O is attempted.
type Credentials struct {
	Host     string
	Port     string
	DBName   string
	User     string
	Password string
}

// Required environment variables, in reporting order
var credentialVars = []string{"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASS"}

// ResolveCredentials reads the database connection parameters from the
// process environment. A .env file in the working directory is loaded first
// if present; explicit environment variables take precedence over it.
func ResolveCredentials() (*Credentials, error) {
	// Overload=false: an exported variable always wins over .env
	_ = godotenv.Load()

	values := make(map[string]string, len(credentialVars))
	var missing []string
	for _, name := range credentialVars {
		v := os.Getenv(name)
		if v == "" {
			missing = append(missing, name)
			continue
		}
		values[name] = v
	}

	if len(missing) > 0 {
		return nil, errors.ConfigurationError("database environment variables are not set", missing...)
	}

	if _, err := strconv.Atoi(values["DB_PORT"]); err != nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "DB_PORT must be an integer").
			WithContext("value", values["DB_PORT"])
	}

	return &Credentials{
		Host:     values["DB_HOST"],
		Port:     values["DB_PORT"],
		DBName:   values["DB_NAME"],
		User:     values["DB_USER"],
		Password: values["DB_PASS"],
	}, nil
}
