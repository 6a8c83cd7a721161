// Package config provides configuration management for Engram.
package config

import (
	"fmt"
	"time"
)

// Config is the global configuration for Engram.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Server is the HTTP server configuration.
	Server ServerConfig `mapstructure:"server" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Store is the persistence configuration.
	Store StoreConfig `mapstructure:"store"`

	// Redis is the Redis connection configuration, used when the
	// working-memory buffer backend is "redis".
	Redis RedisConfig `mapstructure:"redis"`

	// Memory is the memory lifecycle engine configuration.
	Memory MemoryConfig `mapstructure:"memory"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Tracing is the distributed tracing configuration.
	Tracing TracingConfig `mapstructure:"tracing"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Version is the application version.
	Version string `mapstructure:"version"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"oneof=development staging production"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	// Host is the bind address.
	Host string `mapstructure:"host"`

	// Port is the HTTP API port.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// HTTP is the HTTP server configuration.
	HTTP HTTPConfig `mapstructure:"http"`

	// CORS is the CORS configuration.
	CORS CORSConfig `mapstructure:"cors"`
}

// HTTPConfig holds HTTP-specific settings.
type HTTPConfig struct {
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	// Enabled enables CORS support.
	Enabled bool `mapstructure:"enabled"`

	// AllowedOrigins is the list of allowed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AllowedMethods is the list of allowed HTTP methods.
	AllowedMethods []string `mapstructure:"allowed_methods"`

	// AllowedHeaders is the list of allowed headers.
	AllowedHeaders []string `mapstructure:"allowed_headers"`

	// ExposedHeaders is the list of headers exposed to the client.
	ExposedHeaders []string `mapstructure:"exposed_headers"`

	// AllowCredentials indicates whether credentials are allowed.
	AllowCredentials bool `mapstructure:"allow_credentials"`

	// MaxAge is the maximum age of CORS preflight cache in seconds.
	MaxAge int `mapstructure:"max_age"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the output format (json, text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the output destination (stdout, stderr, or file path).
	Output string `mapstructure:"output"`
}

// StoreConfig holds persistence settings for memory records.
type StoreConfig struct {
	// Type is the storage backend (memory, badger, sqlite).
	Type string `mapstructure:"type" validate:"oneof=memory badger sqlite"`

	// Badger is the BadgerDB configuration.
	Badger BadgerConfig `mapstructure:"badger"`

	// SQLite is the SQLite configuration.
	SQLite SQLiteConfig `mapstructure:"sqlite"`
}

// BadgerConfig holds BadgerDB-specific settings.
type BadgerConfig struct {
	// Path is the database directory path.
	Path string `mapstructure:"path"`

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool `mapstructure:"sync_writes"`

	// ValueLogFileSize is the maximum size of value log files in bytes.
	ValueLogFileSize int64 `mapstructure:"value_log_file_size"`

	// NumVersionsToKeep is the number of versions to keep per key.
	NumVersionsToKeep int `mapstructure:"num_versions_to_keep"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	// Path is the database file path. ":memory:" opens an in-memory database.
	Path string `mapstructure:"path"`

	// BusyTimeout is how long SQLite waits on a locked database before
	// returning SQLITE_BUSY.
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	// Address is the Redis server address.
	Address string `mapstructure:"address"`

	// Password is the Redis password.
	Password string `mapstructure:"password"`

	// DB is the Redis database number.
	DB int `mapstructure:"db"`
}

// MemoryConfig holds memory lifecycle engine settings.
type MemoryConfig struct {
	// EmbeddingDimension is the required dimensionality of memory embeddings.
	EmbeddingDimension int `mapstructure:"embedding_dimension" validate:"min=1"`

	// DefaultDecayRate is the per-day decay rate applied when a
	// consolidation decision does not specify one.
	DefaultDecayRate float64 `mapstructure:"default_decay_rate" validate:"gt=0"`

	// ReinforcementWeight scales the logarithmic importance growth on access.
	ReinforcementWeight float64 `mapstructure:"reinforcement_weight" validate:"gt=0"`

	// MaxRetries bounds optimistic-concurrency retries on contended updates.
	MaxRetries int `mapstructure:"max_retries" validate:"min=1"`

	// Buffer is the working-memory buffer configuration.
	Buffer BufferConfig `mapstructure:"buffer"`

	// Prune is the background pruning configuration.
	Prune PruneConfig `mapstructure:"prune"`
}

// BufferConfig holds working-memory buffer settings.
type BufferConfig struct {
	// Backend is the buffer implementation (local, redis).
	Backend string `mapstructure:"backend" validate:"oneof=local redis"`

	// Capacity is the maximum number of buffered items (0 = unbounded).
	// Only the local backend enforces a capacity.
	Capacity int `mapstructure:"capacity" validate:"min=0"`

	// DefaultTTL is the expiry applied to items stored without one.
	DefaultTTL time.Duration `mapstructure:"default_ttl"`

	// JanitorInterval is how often expired items are reaped from the
	// local backend. Redis expires keys server-side.
	JanitorInterval time.Duration `mapstructure:"janitor_interval"`

	// KeyPrefix namespaces buffer keys in Redis.
	KeyPrefix string `mapstructure:"key_prefix"`
}

// PruneConfig holds background pruning settings.
type PruneConfig struct {
	// Enabled enables the background pruning sweep.
	Enabled bool `mapstructure:"enabled"`

	// Interval is the time between sweeps.
	Interval time.Duration `mapstructure:"interval"`

	// ArchiveThreshold is the relevance score below which an active
	// memory becomes a candidate for archival.
	ArchiveThreshold float64 `mapstructure:"archive_threshold" validate:"min=0"`

	// InvalidateThreshold is the relevance score below which an archived
	// memory becomes a candidate for invalidation.
	InvalidateThreshold float64 `mapstructure:"invalidate_threshold" validate:"min=0"`

	// AccessGrace is how long after the last access an active memory is
	// protected from archival regardless of score.
	AccessGrace time.Duration `mapstructure:"access_grace"`

	// ArchiveGrace is how long after archival a memory is protected from
	// invalidation regardless of score.
	ArchiveGrace time.Duration `mapstructure:"archive_grace"`

	// RatePerSecond limits how many records a sweep examines per second
	// (0 = unpaced).
	RatePerSecond float64 `mapstructure:"rate_per_second" validate:"min=0"`

	// Burst is the rate limiter burst size.
	Burst int `mapstructure:"burst" validate:"min=0"`
}

// MetricsConfig holds observability settings.
type MetricsConfig struct {
	// Enabled enables metrics collection.
	Enabled bool `mapstructure:"enabled"`

	// Path is the metrics endpoint path.
	Path string `mapstructure:"path"`

	// Port is the metrics server port.
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// TracingConfig holds distributed tracing settings.
type TracingConfig struct {
	// Enabled enables distributed tracing.
	Enabled bool `mapstructure:"enabled"`

	// Exporter is the tracing exporter (otlp).
	Exporter string `mapstructure:"exporter" validate:"omitempty,oneof=otlp"`

	// Endpoint is the collector endpoint.
	Endpoint string `mapstructure:"endpoint"`

	// Timeout is the export timeout.
	Timeout time.Duration `mapstructure:"timeout"`

	// Headers are extra headers sent to the collector.
	Headers map[string]string `mapstructure:"headers"`

	// Sampler selects the sampling strategy (ratio, always_on, always_off).
	Sampler string `mapstructure:"sampler" validate:"omitempty,oneof=ratio always_on always_off"`

	// SampleRate is the fraction of traces to sample (0.0-1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// Validate performs validation on the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// String returns a string representation of the configuration (without sensitive data).
func (c *Config) String() string {
	return fmt.Sprintf("Config{App: %s, Server: :%d, Store: %s, Env: %s}",
		c.App.Name, c.Server.Port, c.Store.Type, c.App.Environment)
}
