package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNewWatcher(t *testing.T) {
	loader := NewLoader()

	t.Run("valid config path", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("app:\n  name: test\n"), 0644); err != nil {
			t.Fatalf("failed to create temp config: %v", err)
		}

		watcher, err := NewWatcher(configPath, loader)
		if err != nil {
			t.Fatalf("NewWatcher failed: %v", err)
		}
		defer watcher.Stop()

		if watcher.ConfigPath() != configPath {
			t.Errorf("expected config path %s, got %s", configPath, watcher.ConfigPath())
		}
	})

	t.Run("empty config path", func(t *testing.T) {
		_, err := NewWatcher("", loader)
		if err == nil {
			t.Fatal("expected error for empty config path")
		}
	})

	t.Run("with debounce option", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("app:\n  name: test\n"), 0644); err != nil {
			t.Fatalf("failed to create temp config: %v", err)
		}

		watcher, err := NewWatcher(configPath, loader, WithDebounce(100*time.Millisecond))
		if err != nil {
			t.Fatalf("NewWatcher failed: %v", err)
		}
		defer watcher.Stop()

		if watcher.debounce != 100*time.Millisecond {
			t.Errorf("expected debounce 100ms, got %v", watcher.debounce)
		}
	})
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("detects threshold changes", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		initialContent := `app:
  name: engram
memory:
  prune:
    archive_threshold: 0.2
`
		if err := os.WriteFile(configPath, []byte(initialContent), 0644); err != nil {
			t.Fatalf("failed to create temp config: %v", err)
		}

		watcher, err := NewWatcher(configPath, NewLoader())
		if err != nil {
			t.Fatalf("NewWatcher failed: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var mu sync.Mutex
		var received *Config

		watcher.OnChange(func(cfg *Config) {
			mu.Lock()
			defer mu.Unlock()
			received = cfg
		})

		watchErr := make(chan error, 1)
		go func() {
			watchErr <- watcher.Watch(ctx)
		}()

		// Wait a bit for watcher to start
		time.Sleep(100 * time.Millisecond)

		updatedContent := `app:
  name: engram
memory:
  prune:
    archive_threshold: 0.4
`
		if err := os.WriteFile(configPath, []byte(updatedContent), 0644); err != nil {
			t.Fatalf("failed to update config: %v", err)
		}

		// Poll for the callback
		deadline := time.Now().Add(1500 * time.Millisecond)
		for time.Now().Before(deadline) {
			mu.Lock()
			got := received
			mu.Unlock()
			if got != nil {
				if got.Memory.Prune.ArchiveThreshold != 0.4 {
					t.Errorf("expected reloaded archive threshold 0.4, got %f", got.Memory.Prune.ArchiveThreshold)
				}
				break
			}
			time.Sleep(50 * time.Millisecond)
		}

		_ = watcher.Stop()
		<-watchErr

		mu.Lock()
		defer mu.Unlock()
		if received == nil {
			t.Skip("file change event not delivered in time")
		}
	})

	t.Run("double start fails", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("app:\n  name: test\n"), 0644); err != nil {
			t.Fatalf("failed to create temp config: %v", err)
		}

		watcher, err := NewWatcher(configPath, NewLoader())
		if err != nil {
			t.Fatalf("NewWatcher failed: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = watcher.Watch(ctx) }()
		time.Sleep(100 * time.Millisecond)

		if !watcher.IsRunning() {
			t.Fatal("expected watcher to be running")
		}
		if err := watcher.Watch(ctx); err == nil {
			t.Error("expected error for second Watch call")
		}

		_ = watcher.Stop()
	})
}

func TestExtractHotReloadable(t *testing.T) {
	cfg := DefaultConfig()
	h := ExtractHotReloadable(cfg)

	if h.LogLevel != "info" {
		t.Errorf("expected log level 'info', got %s", h.LogLevel)
	}
	if h.ArchiveThreshold != 0.2 {
		t.Errorf("expected archive threshold 0.2, got %f", h.ArchiveThreshold)
	}
	if h.PruneInterval != time.Hour {
		t.Errorf("expected prune interval 1h, got %v", h.PruneInterval)
	}
}

func TestHotReloadableConfig_Changed(t *testing.T) {
	base := ExtractHotReloadable(DefaultConfig())

	same := base
	if base.Changed(same) {
		t.Error("expected no change for identical config")
	}

	changed := base
	changed.ArchiveThreshold = 0.9
	if !base.Changed(changed) {
		t.Error("expected change when archive threshold differs")
	}

	changed = base
	changed.LogLevel = "debug"
	if !base.Changed(changed) {
		t.Error("expected change when log level differs")
	}
}
