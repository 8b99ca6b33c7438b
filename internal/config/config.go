// Package config loads the database settings of an import run from a config
// file and the PG* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ErrMissingDatabase is returned when no database name was configured.
var ErrMissingDatabase = errors.New("database name is not configured")

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "config.json"

// Connection defaults used when neither the file nor the environment sets a value.
const (
	DefaultHost    = "localhost"
	DefaultPort    = 5432
	DefaultSSLMode = "prefer"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	DBName   string `json:"dbname" yaml:"dbname"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	SSLMode  string `json:"sslmode" yaml:"sslmode"`
}

// Config is the content of a config file.
type Config struct {
	Database DatabaseConfig `json:"database" yaml:"database"`
}

// Load reads the config file at path. Files ending in .json are decoded as
// JSON, anything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Name returns the database name. "dbname" wins over its "database" alias.
func (c *DatabaseConfig) Name() string {
	if c.DBName != "" {
		return c.DBName
	}
	return c.Database
}

// ApplyEnv overrides settings with the PG* variables that lookup reports as set.
// Pass os.LookupEnv in production.
func (c *DatabaseConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PGHOST"); ok && v != "" {
		c.Host = v
	}
	if v, ok := lookup("PGPORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PGPORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v, ok := lookup("PGDATABASE"); ok && v != "" {
		c.DBName = v
	}
	if v, ok := lookup("PGUSER"); ok && v != "" {
		c.User = v
	}
	if v, ok := lookup("PGPASSWORD"); ok {
		c.Password = v
	}
	if v, ok := lookup("PGSSLMODE"); ok && v != "" {
		c.SSLMode = v
	}
	return nil
}

// Validate reports settings that cannot form a connection string.
func (c *DatabaseConfig) Validate() error {
	if c.Name() == "" {
		return ErrMissingDatabase
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// ConnString renders the settings as a postgres:// URI, filling in defaults.
func (c *DatabaseConfig) ConnString() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	host := c.Host
	if host == "" {
		host = DefaultHost
	}
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     "/" + c.Name(),
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	switch {
	case c.User != "" && c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}
	return u.String(), nil
}
