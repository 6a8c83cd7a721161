package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "engram",
			Version:     "dev",
			Environment: "development",
			Debug:       false,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			HTTP: HTTPConfig{
				ReadTimeout:     30 * time.Second,
				WriteTimeout:    30 * time.Second,
				IdleTimeout:     120 * time.Second,
				ShutdownTimeout: 30 * time.Second,
				MaxHeaderBytes:  1 << 20, // 1MB
			},
			CORS: CORSConfig{
				Enabled:        false,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", "X-Request-ID"},
				MaxAge:         300,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Store: StoreConfig{
			Type: "memory",
			Badger: BadgerConfig{
				Path:              "./data/badger",
				SyncWrites:        true,
				ValueLogFileSize:  1073741824, // 1GB
				NumVersionsToKeep: 1,
			},
			SQLite: SQLiteConfig{
				Path:        "./data/engram.db",
				BusyTimeout: 5 * time.Second,
			},
		},
		Redis: RedisConfig{
			Address:  "localhost:6379",
			Password: "",
			DB:       0,
		},
		Memory: MemoryConfig{
			EmbeddingDimension:  1536,
			DefaultDecayRate:    0.01,
			ReinforcementWeight: 0.1,
			MaxRetries:          3,
			Buffer: BufferConfig{
				Backend:         "local",
				Capacity:        1000,
				DefaultTTL:      1 * time.Hour,
				JanitorInterval: 1 * time.Minute,
				KeyPrefix:       "engram:wm:",
			},
			Prune: PruneConfig{
				Enabled:             true,
				Interval:            1 * time.Hour,
				ArchiveThreshold:    0.2,
				InvalidateThreshold: 0.05,
				AccessGrace:         7 * 24 * time.Hour,
				ArchiveGrace:        30 * 24 * time.Hour,
				RatePerSecond:       0,
				Burst:               1,
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9091,
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "otlp",
			Endpoint:   "localhost:4317",
			Timeout:    10 * time.Second,
			Sampler:    "ratio",
			SampleRate: 0.1,
		},
	}
}
