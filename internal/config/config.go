// Package config provides centralized configuration management for the
// migration pipeline. It loads settings from environment variables with
// sensible defaults and validates everything on startup so a misconfigured
// run fails before any batch work begins.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Mongo   MongoConfig
	Dataset DatasetConfig
	Load    LoadConfig
	Status  StatusConfig
	Wait    WaitConfig
	Logging LoggingConfig
}

// MongoConfig holds document store connection settings.
type MongoConfig struct {
	// URI overrides the URI built from the individual settings below.
	// When set, User and Password are not required.
	URI string `env:"MONGO_URI"`

	// Host is the MongoDB host (default: localhost)
	Host string `env:"MONGO_HOST" default:"localhost"`

	// Port is the MongoDB port (default: 27017)
	Port int `env:"MONGO_PORT" default:"27017"`

	// User is the application user created in the target database
	User string `env:"MONGO_APP_USER"`

	// Password is the application user's password
	Password string `env:"MONGO_APP_PASSWORD"`

	// Database is the target database, also used as authSource (default: medical)
	Database string `env:"MONGO_DB" default:"medical"`

	// Collection is the destination collection (default: patients)
	Collection string `env:"COLLECTION_NAME" default:"patients"`

	// SelectionTimeout bounds server selection on connect (default: 10s)
	SelectionTimeout time.Duration `env:"MONGO_SELECTION_TIMEOUT" default:"10s"`
}

// DatasetConfig holds source dataset settings.
type DatasetConfig struct {
	// Path is the CSV dataset to migrate (default: /app/data/dataset.csv)
	Path string `env:"DATASET_PATH" default:"/app/data/dataset.csv"`
}

// LoadConfig holds batch upsert settings.
type LoadConfig struct {
	// BatchSize is the number of documents per bulk write (default: 1000)
	BatchSize int `env:"BATCH_SIZE" default:"1000"`
}

// StatusConfig holds the optional HTTP status server settings.
type StatusConfig struct {
	// Enabled starts the status server for the duration of the run (default: false)
	Enabled bool `env:"STATUS_ENABLED" default:"false"`

	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"STATUS_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"STATUS_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"STATUS_READ_TIMEOUT" default:"15s"`

	// ShutdownTimeout is the graceful shutdown bound (default: 10s)
	ShutdownTimeout time.Duration `env:"STATUS_SHUTDOWN_TIMEOUT" default:"10s"`
}

// WaitConfig holds store readiness probe settings.
type WaitConfig struct {
	// Timeout is the total time to wait for readiness (default: 60s)
	Timeout time.Duration `env:"WAIT_TIMEOUT" default:"60s"`

	// Interval is the delay between probe attempts (default: 1500ms)
	Interval time.Duration `env:"WAIT_INTERVAL" default:"1500ms"`

	// MinDocs is the minimum document count for data checks (default: 1)
	MinDocs int64 `env:"MIN_DOCS" default:"1"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// URIString returns the connection URI: the explicit override when set,
// otherwise one built from the individual settings. The application user
// authenticates against the target database itself.
func (c *MongoConfig) URIString() string {
	if c.URI != "" {
		return c.URI
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%d/%s?authSource=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.Database)
}

// Addr returns the status server listen address in host:port format.
func (c *StatusConfig) Addr() string {
	if c.Host == "" {
		return fmt.Sprintf(":%d", c.Port)
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
