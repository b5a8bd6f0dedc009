package dbt

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"revenuecast/internal/common"
	"revenuecast/internal/config"
	"revenuecast/pkg/errors"
)

// Profile is the in-memory representation of a dbt connection profile.
// Serialization to profiles.yml is an adapter over this struct, not the
// source of truth.
type Profile struct {
	Name    string
	Target  string
	Outputs map[string]Output
}

// Output is one named connection target within a profile
type Output struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Schema   string `yaml:"schema"`
	Threads  int    `yaml:"threads"`
}

// NewProfile builds a postgres profile pointing at the same database and
// schema used for ingestion.
func NewProfile(name, target, schema string, creds *config.Credentials) (*Profile, error) {
	port, err := strconv.Atoi(creds.Port)
	if err != nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "DB_PORT must be an integer").
			WithContext("value", creds.Port)
	}

	return &Profile{
		Name:   name,
		Target: target,
		Outputs: map[string]Output{
			target: {
				Type:     "postgres",
				Host:     creds.Host,
				Port:     port,
				User:     creds.User,
				Password: creds.Password,
				DBName:   creds.DBName,
				Schema:   schema,
				Threads:  1,
			},
		},
	}, nil
}

// DefaultProfilesDir returns the user-scoped dbt configuration directory
func DefaultProfilesDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dbt")
}

// Write serializes the profile to profiles.yml under dir, creating the
// directory if needed. Re-running overwrites prior content without error.
func (p *Profile) Write(dir string) error {
	if err := common.EnsureDir(dir, common.DirPermissionPrivate); err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to create profiles directory")
	}

	doc := map[string]interface{}{
		p.Name: map[string]interface{}{
			"target":  p.Target,
			"outputs": p.Outputs,
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to marshal profiles.yml")
	}

	path := filepath.Join(dir, "profiles.yml")
	if err := os.WriteFile(path, data, common.FilePermissionPrivate); err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to write profiles.yml").
			WithContext("path", path)
	}

	return nil
}
