package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load("", dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Storage.DataDir != dir {
		t.Errorf("data dir = %q, want %q", cfg.Storage.DataDir, dir)
	}
	if cfg.Storage.MaxBlobSize != 50*1024*1024 {
		t.Errorf("max blob size = %d", cfg.Storage.MaxBlobSize)
	}
	if cfg.Storage.LockWait != 5*time.Second {
		t.Errorf("lock wait = %s", cfg.Storage.LockWait)
	}
	if cfg.Session.ArenaSize != 16 {
		t.Errorf("arena size = %d", cfg.Session.ArenaSize)
	}
	if cfg.OCR.Timeout != 60*time.Second || cfg.OCR.Language != "eng" {
		t.Errorf("ocr = %+v", cfg.OCR)
	}
	if cfg.Render.DefaultZoom != 2.0 {
		t.Errorf("default zoom = %g", cfg.Render.DefaultZoom)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scribe.yaml")
	yaml := "session:\n  arena_size: 4\nrender:\n  default_zoom: 1.5\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.ArenaSize != 4 {
		t.Errorf("arena size = %d, want 4", cfg.Session.ArenaSize)
	}
	if cfg.Render.DefaultZoom != 1.5 {
		t.Errorf("default zoom = %g, want 1.5", cfg.Render.DefaultZoom)
	}
	// Untouched keys keep their defaults.
	if cfg.OCR.Language != "eng" {
		t.Errorf("ocr language = %q", cfg.OCR.Language)
	}
}

func TestLoadImplicitConfigFile(t *testing.T) {
	// A scribe.yaml inside the data directory is picked up without -config.
	dir := t.TempDir()
	yaml := "session:\n  arena_size: 2\n"
	if err := os.WriteFile(filepath.Join(dir, "scribe.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load("", dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.ArenaSize != 2 {
		t.Errorf("arena size = %d, want 2", cfg.Session.ArenaSize)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero arena", "session:\n  arena_size: 0\n"},
		{"negative zoom", "render:\n  default_zoom: -1\n"},
		{"zero lock wait", "storage:\n  lock_wait: 0s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "scribe.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path, dir); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scribe.yaml")
	if err := os.WriteFile(path, []byte(":[ not yaml"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path, dir); err == nil {
		t.Error("expected parse error")
	}
}
