// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Job      JobConfig
	Logging  LoggingConfig
}

// ServerConfig holds the server settings. Host and Port are loaded,
// validated and logged (Addr formats them), but no component of this
// repository binds or listens on them. ShutdownTimeout bounds how long the
// process waits for in-flight files to drain on shutdown.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ShutdownTimeout is the maximum duration to wait for in-flight jobs to
	// drain before the process exits (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds the destination SQL Server connection settings.
type DatabaseConfig struct {
	// URL is the SQL Server connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxOpenConns is the maximum number of open connections in the pool (default: 20)
	MaxOpenConns int `env:"DB_MAX_OPEN_CONNS" default:"20"`

	// MaxIdleConns is the maximum number of idle connections kept open (default: 4)
	MaxIdleConns int `env:"DB_MAX_IDLE_CONNS" default:"4"`

	// ConnMaxLifetime is the maximum lifetime of a connection (default: 1h)
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" default:"1h"`
}

// JobConfig holds the Job Orchestrator/Bulk Loader/Type Inferencer tuning
// knobs.
type JobConfig struct {
	// WorkerPoolSize bounds how many files process concurrently across all
	// running jobs, which share one pool (default: 4)
	WorkerPoolSize int `env:"JOB_WORKER_POOL_SIZE" default:"4"`

	// BatchSize is the number of rows submitted per bulk-copy batch (default: 1000)
	BatchSize int `env:"JOB_BATCH_SIZE" default:"1000"`

	// BulkCopyTimeout is loaded and validated (default: 300s). The Bulk Loader
	// does not read it; it applies its own fixed 300s timeout to each batch.
	BulkCopyTimeout time.Duration `env:"JOB_BULK_COPY_TIMEOUT" default:"300s"`

	// ConnectTestTimeout is loaded and validated (default: 5s). TestConnection
	// does not read it; it applies its own fixed 5s timeout.
	ConnectTestTimeout time.Duration `env:"JOB_CONNECT_TEST_TIMEOUT" default:"5s"`

	// SampleSize is how many values per column the Type Inferencer samples (default: 5000)
	SampleSize int `env:"JOB_SAMPLE_SIZE" default:"5000"`

	// QueueCapacity bounds how many submitted jobs may wait in the Job Queue
	// before Submit starts rejecting (default: 256)
	QueueCapacity int `env:"JOB_QUEUE_CAPACITY" default:"256"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
