package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		defaultVal := field.Tag.Get("default")

		if envName == "" {
			continue
		}

		value := os.Getenv(envName)

		// Apply default if not set
		if value == "" {
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Store validation: credentials may come from an explicit URI instead
	if c.Mongo.URI == "" {
		if c.Mongo.User == "" {
			errs = append(errs, "MONGO_APP_USER is required when MONGO_URI is not set")
		}
		if c.Mongo.Password == "" {
			errs = append(errs, "MONGO_APP_PASSWORD is required when MONGO_URI is not set")
		}
	}
	if c.Mongo.Port <= 0 || c.Mongo.Port > 65535 {
		errs = append(errs, fmt.Sprintf("MONGO_PORT (%d) must be 1-65535", c.Mongo.Port))
	}
	if c.Mongo.Database == "" {
		errs = append(errs, "MONGO_DB must not be empty")
	}
	if c.Mongo.Collection == "" {
		errs = append(errs, "COLLECTION_NAME must not be empty")
	}
	if c.Mongo.SelectionTimeout <= 0 {
		errs = append(errs, "MONGO_SELECTION_TIMEOUT must be positive")
	}

	// Dataset validation
	if c.Dataset.Path == "" {
		errs = append(errs, "DATASET_PATH must not be empty")
	}

	// Load validation
	if c.Load.BatchSize <= 0 {
		errs = append(errs, "BATCH_SIZE must be positive")
	}

	// Status server validation
	if c.Status.Enabled {
		if c.Status.Port <= 0 || c.Status.Port > 65535 {
			errs = append(errs, fmt.Sprintf("STATUS_PORT (%d) must be 1-65535", c.Status.Port))
		}
		if c.Status.ShutdownTimeout <= 0 {
			errs = append(errs, "STATUS_SHUTDOWN_TIMEOUT must be positive")
		}
	}

	// Wait validation
	if c.Wait.Timeout <= 0 {
		errs = append(errs, "WAIT_TIMEOUT must be positive")
	}
	if c.Wait.Interval <= 0 {
		errs = append(errs, "WAIT_INTERVAL must be positive")
	}
	if c.Wait.MinDocs < 0 {
		errs = append(errs, "MIN_DOCS must be non-negative")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Credentials are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Mongo: {Host: %q, Port: %d, Database: %q, Collection: %q, User: [MASKED]}, ",
		c.Mongo.Host, c.Mongo.Port, c.Mongo.Database, c.Mongo.Collection))
	b.WriteString(fmt.Sprintf("Dataset: {Path: %q}, ", c.Dataset.Path))
	b.WriteString(fmt.Sprintf("Load: {BatchSize: %d}, ", c.Load.BatchSize))
	b.WriteString(fmt.Sprintf("Status: {Enabled: %v, Port: %d}, ", c.Status.Enabled, c.Status.Port))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
