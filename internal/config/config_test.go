package config

import (
	"os"
	"testing"
)

func TestNew_HasSaneDefaults(t *testing.T) {
	cfg := New()
	if cfg.Server.Port != 8951 {
		t.Fatalf("expected default port 8951, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Logging.Level)
	}
	if cfg.Snapshot.Enabled {
		t.Fatalf("expected snapshot disabled by default")
	}
}

func TestLoadFromFile_MissingFileIsNotAnError(t *testing.T) {
	cfg := New()
	if err := loadFromFile("does/not/exist.yaml", cfg); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLoadFromFile_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	contents := []byte("server:\n  port: 9000\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := New()
	if err := loadFromFile(path, cfg); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("expected port overridden to 9000, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected level overridden to debug, got %q", cfg.Logging.Level)
	}
}
