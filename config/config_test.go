package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test App defaults
	if cfg.App.Name != "engram" {
		t.Errorf("expected app name 'engram', got %s", cfg.App.Name)
	}
	if cfg.App.Environment != "development" {
		t.Errorf("expected environment 'development', got %s", cfg.App.Environment)
	}

	// Test Server defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("expected server port 8080, got %d", cfg.Server.Port)
	}

	// Test Log defaults
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected log format 'json', got %s", cfg.Log.Format)
	}

	// Test Store defaults
	if cfg.Store.Type != "memory" {
		t.Errorf("expected store type 'memory', got %s", cfg.Store.Type)
	}
	if cfg.Store.SQLite.BusyTimeout != 5*time.Second {
		t.Errorf("expected sqlite busy timeout 5s, got %v", cfg.Store.SQLite.BusyTimeout)
	}

	// Test Memory defaults
	if cfg.Memory.EmbeddingDimension != 1536 {
		t.Errorf("expected embedding dimension 1536, got %d", cfg.Memory.EmbeddingDimension)
	}
	if cfg.Memory.DefaultDecayRate != 0.01 {
		t.Errorf("expected default decay rate 0.01, got %f", cfg.Memory.DefaultDecayRate)
	}
	if cfg.Memory.ReinforcementWeight != 0.1 {
		t.Errorf("expected reinforcement weight 0.1, got %f", cfg.Memory.ReinforcementWeight)
	}
	if cfg.Memory.MaxRetries != 3 {
		t.Errorf("expected max retries 3, got %d", cfg.Memory.MaxRetries)
	}
	if cfg.Memory.Buffer.Backend != "local" {
		t.Errorf("expected buffer backend 'local', got %s", cfg.Memory.Buffer.Backend)
	}

	// Test Prune defaults
	if !cfg.Memory.Prune.Enabled {
		t.Error("expected prune.enabled to be true")
	}
	if cfg.Memory.Prune.ArchiveThreshold != 0.2 {
		t.Errorf("expected archive threshold 0.2, got %f", cfg.Memory.Prune.ArchiveThreshold)
	}
	if cfg.Memory.Prune.InvalidateThreshold != 0.05 {
		t.Errorf("expected invalidate threshold 0.05, got %f", cfg.Memory.Prune.InvalidateThreshold)
	}
	if cfg.Memory.Prune.AccessGrace != 7*24*time.Hour {
		t.Errorf("expected access grace 168h, got %v", cfg.Memory.Prune.AccessGrace)
	}
	if cfg.Memory.Prune.ArchiveGrace != 30*24*time.Hour {
		t.Errorf("expected archive grace 720h, got %v", cfg.Memory.Prune.ArchiveGrace)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     DefaultConfig(),
			wantErr: false,
		},
		{
			name: "missing app name",
			cfg: func() *Config {
				cfg := DefaultConfig()
				cfg.App.Name = ""
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "invalid port",
			cfg: func() *Config {
				cfg := DefaultConfig()
				cfg.Server.Port = 99999
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "invalid log level",
			cfg: func() *Config {
				cfg := DefaultConfig()
				cfg.Log.Level = "trace"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "invalid environment",
			cfg: func() *Config {
				cfg := DefaultConfig()
				cfg.App.Environment = "invalid"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "invalid store type",
			cfg: func() *Config {
				cfg := DefaultConfig()
				cfg.Store.Type = "postgres"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "invalid buffer backend",
			cfg: func() *Config {
				cfg := DefaultConfig()
				cfg.Memory.Buffer.Backend = "memcached"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "zero embedding dimension",
			cfg: func() *Config {
				cfg := DefaultConfig()
				cfg.Memory.EmbeddingDimension = 0
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "negative decay rate",
			cfg: func() *Config {
				cfg := DefaultConfig()
				cfg.Memory.DefaultDecayRate = -0.5
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "invalid tracing sampler",
			cfg: func() *Config {
				cfg := DefaultConfig()
				cfg.Tracing.Sampler = "sometimes"
				return cfg
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWithDetails_ThresholdOrdering(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Memory.Prune.ArchiveThreshold = 0.1
	cfg.Memory.Prune.InvalidateThreshold = 0.5

	err := ValidateWithDetails(cfg)
	if err == nil {
		t.Fatal("expected validation error when invalidate threshold exceeds archive threshold")
	}

	details, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(details) == 0 {
		t.Fatal("expected non-empty validation details")
	}
}

func TestValidateWithDetails_RateWithoutBurst(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Memory.Prune.RatePerSecond = 50
	cfg.Memory.Prune.Burst = 0

	if err := ValidateWithDetails(cfg); err == nil {
		t.Fatal("expected validation error for zero burst with a sweep rate set")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "server.port", Message: "must be between 1 and 65535", Value: 99999},
		{Field: "log.level", Message: "must be one of [debug info warn error]", Value: "trace"},
	}

	errMsg := errs.Error()
	if errMsg == "" {
		t.Error("expected error message")
	}

	if errMsg == "no validation errors" {
		t.Error("expected error details")
	}
}

func TestConfig_String(t *testing.T) {
	cfg := &Config{
		App: AppConfig{
			Name:        "test",
			Environment: "development",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}

	s := cfg.String()
	if s == "" {
		t.Error("expected non-empty string representation")
	}
}

func TestDurationParsing(t *testing.T) {
	// Test that duration fields work correctly
	cfg := DefaultConfig()

	if cfg.Server.HTTP.ReadTimeout != 30*time.Second {
		t.Errorf("expected read timeout 30s, got %v", cfg.Server.HTTP.ReadTimeout)
	}

	if cfg.Memory.Prune.Interval != time.Hour {
		t.Errorf("expected prune interval 1h, got %v", cfg.Memory.Prune.Interval)
	}

	if cfg.Memory.Buffer.DefaultTTL != time.Hour {
		t.Errorf("expected buffer ttl 1h, got %v", cfg.Memory.Buffer.DefaultTTL)
	}
}

func TestLoader_Get(t *testing.T) {
	loader := NewLoader()
	_, _ = loader.Load("", nil) // Load defaults

	// Test Get
	val := loader.Get("app.name")
	if val == nil {
		t.Error("expected non-nil value for app.name")
	}

	// Test GetString
	str := loader.GetString("app.name")
	if str != "engram" {
		t.Errorf("expected 'engram', got '%s'", str)
	}

	// Test GetInt
	port := loader.GetInt("server.port")
	if port != 8080 {
		t.Errorf("expected 8080, got %d", port)
	}

	// Test GetBool
	enabled := loader.GetBool("metrics.enabled")
	if !enabled {
		t.Error("expected metrics.enabled to be true")
	}
}

func TestLoader_Set(t *testing.T) {
	loader := NewLoader()
	_, _ = loader.Load("", nil)

	// Set a value
	err := loader.Set("app.name", "custom-app")
	if err != nil {
		t.Errorf("unexpected error setting value: %v", err)
	}

	// Verify it was set
	if loader.GetString("app.name") != "custom-app" {
		t.Errorf("expected 'custom-app', got '%s'", loader.GetString("app.name"))
	}
}

func TestLoad(t *testing.T) {
	// Test convenience function
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Error("expected non-nil config")
	}
}

func TestLoadOrDie(t *testing.T) {
	// Test with valid config
	cfg := LoadOrDie("", nil)
	if cfg == nil {
		t.Error("expected non-nil config")
	}
}

func TestLoadOrDie_Panic(t *testing.T) {
	// Test panic on invalid config file
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid config file")
		}
	}()

	LoadOrDie("/nonexistent/path/config.yaml", nil)
}

func TestLoader_LoadFile(t *testing.T) {
	// Create a temp YAML config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: yaml-test
  environment: production
server:
  port: 9999
log:
  level: debug
  format: text
store:
  type: sqlite
  sqlite:
    path: /tmp/engram-test.db
memory:
  embedding_dimension: 8
  buffer:
    backend: redis
    key_prefix: "test:wm:"
  prune:
    enabled: false
    archive_threshold: 0.3
    invalidate_threshold: 0.1
    access_grace: 24h
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	loader := NewLoader()
	cfg, err := loader.Load(configPath, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "yaml-test" {
		t.Errorf("expected 'yaml-test', got '%s'", cfg.App.Name)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("expected 9999, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected 'debug', got '%s'", cfg.Log.Level)
	}
	if cfg.Store.Type != "sqlite" {
		t.Errorf("expected store type 'sqlite', got '%s'", cfg.Store.Type)
	}
	if cfg.Store.SQLite.Path != "/tmp/engram-test.db" {
		t.Errorf("expected sqlite path to be set, got '%s'", cfg.Store.SQLite.Path)
	}
	if cfg.Memory.EmbeddingDimension != 8 {
		t.Errorf("expected embedding dimension 8, got %d", cfg.Memory.EmbeddingDimension)
	}
	if cfg.Memory.Buffer.Backend != "redis" {
		t.Errorf("expected buffer backend 'redis', got '%s'", cfg.Memory.Buffer.Backend)
	}
	if cfg.Memory.Prune.Enabled {
		t.Error("expected prune.enabled to be false")
	}
	if cfg.Memory.Prune.ArchiveThreshold != 0.3 {
		t.Errorf("expected archive threshold 0.3, got %f", cfg.Memory.Prune.ArchiveThreshold)
	}
	if cfg.Memory.Prune.AccessGrace != 24*time.Hour {
		t.Errorf("expected access grace 24h, got %v", cfg.Memory.Prune.AccessGrace)
	}

	// Defaults survive a partial file
	if cfg.Memory.DefaultDecayRate != 0.01 {
		t.Errorf("expected default decay rate to survive, got %f", cfg.Memory.DefaultDecayRate)
	}
	if cfg.Memory.Prune.ArchiveGrace != 30*24*time.Hour {
		t.Errorf("expected archive grace default to survive, got %v", cfg.Memory.Prune.ArchiveGrace)
	}
}

func TestLoader_LoadJSONFile(t *testing.T) {
	// Create a temp JSON config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	jsonContent := `{
		"app": {
			"name": "json-test",
			"environment": "staging"
		},
		"server": {
			"port": 8888
		},
		"log": {
			"level": "warn",
			"format": "json"
		}
	}`
	if err := os.WriteFile(configPath, []byte(jsonContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	loader := NewLoader()
	cfg, err := loader.Load(configPath, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "json-test" {
		t.Errorf("expected 'json-test', got '%s'", cfg.App.Name)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("expected 8888, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected 'warn', got '%s'", cfg.Log.Level)
	}
}

func TestLoader_LoadInvalidFile(t *testing.T) {
	loader := NewLoader()

	// Test with non-existent file
	_, err := loader.Load("/nonexistent/config.yaml", nil)
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoader_LoadUnsupportedFormat(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	if err := os.WriteFile(configPath, []byte("app = 'test'"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	loader := NewLoader()
	_, err := loader.Load(configPath, nil)
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestLoader_EnvVars(t *testing.T) {
	// Set environment variables
	t.Setenv("ENGRAM_APP_NAME", "env-test")
	t.Setenv("ENGRAM_SERVER_PORT", "7777")
	t.Setenv("ENGRAM_LOG_LEVEL", "error")

	loader := NewLoader()
	cfg, err := loader.Load("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "env-test" {
		t.Errorf("expected 'env-test', got '%s'", cfg.App.Name)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("expected 7777, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("expected 'error', got '%s'", cfg.Log.Level)
	}
}

func TestLoader_Overrides(t *testing.T) {
	loader := NewLoader()
	cfg, err := loader.Load("", map[string]interface{}{
		"server.port": 4444,
		"log.level":   "debug",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4444 {
		t.Errorf("expected override port 4444, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected override level 'debug', got '%s'", cfg.Log.Level)
	}
}
