// Package config loads the CRM server configuration from defaults, an
// optional config file, CRM_ environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/syssam/crm/dialect"
)

// EnvPrefix prefixes every environment variable read by the configuration.
// Nested keys use underscores: CRM_HTTP_ADDR sets http.addr.
const EnvPrefix = "CRM"

// Config is the complete server configuration.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	GraphQL  GraphQLConfig  `mapstructure:"graphql" yaml:"graphql"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// HTTPConfig configures the HTTP listener.
type HTTPConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	Playground        bool          `mapstructure:"playground" yaml:"playground"`
}

// DatabaseConfig configures the database connection.
type DatabaseConfig struct {
	Dialect            string        `mapstructure:"dialect" yaml:"dialect"`
	DSN                string        `mapstructure:"dsn" yaml:"dsn"`
	// Schema is the database schema migrations inspect and create tables
	// in. Empty selects the connection's current schema. Queries are not
	// schema-qualified, so a non-default schema must also be on the search
	// path of the connection.
	Schema             string        `mapstructure:"schema" yaml:"schema"`
	MaxOpenConns       int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	AutoMigrate        bool          `mapstructure:"auto_migrate" yaml:"auto_migrate"`
	Debug              bool          `mapstructure:"debug" yaml:"debug"`
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold" yaml:"slow_query_threshold"`
}

// GraphQLConfig configures query execution limits.
type GraphQLConfig struct {
	MaxDepth       int `mapstructure:"max_depth" yaml:"max_depth"`
	MaxParallelism int `mapstructure:"max_parallelism" yaml:"max_parallelism"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Defaults holds the default value of every key.
var Defaults = map[string]any{
	"http.addr":                     ":8080",
	"http.shutdown_timeout":         15 * time.Second,
	"http.read_header_timeout":      5 * time.Second,
	"http.playground":               true,
	"database.dialect":              dialect.SQLite,
	"database.dsn":                  "file:crm.db?_pragma=foreign_keys(1)",
	"database.schema":               "",
	"database.max_open_conns":       0,
	"database.auto_migrate":         true,
	"database.debug":                false,
	"database.slow_query_threshold": 200 * time.Millisecond,
	"graphql.max_depth":             10,
	"graphql.max_parallelism":       10,
	"log.level":                     "info",
	"log.format":                    "json",
}

// New returns a viper instance with the defaults set and environment
// lookup enabled.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges the config file at path into v. The format follows the
// file extension.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("http.shutdown_timeout must not be negative"))
	}
	if err := dialect.Valid(c.Database.Dialect); err != nil {
		errs = append(errs, fmt.Errorf("database.dialect: %w", err))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.Database.MaxOpenConns < 0 {
		errs = append(errs, errors.New("database.max_open_conns must not be negative"))
	}
	if c.GraphQL.MaxDepth <= 0 {
		errs = append(errs, errors.New("graphql.max_depth must be positive"))
	}
	if c.GraphQL.MaxParallelism <= 0 {
		errs = append(errs, errors.New("graphql.max_parallelism must be positive"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != FormatJSON && c.Log.Format != FormatText {
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}
