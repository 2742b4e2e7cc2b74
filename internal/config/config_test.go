package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 800 {
		t.Errorf("expected height 800, got %d", cfg.Graphics.Height)
	}
	if cfg.Model.Source != "" {
		t.Errorf("expected empty model source, got %s", cfg.Model.Source)
	}
	if cfg.Model.InitialState != "Idle" {
		t.Errorf("expected initial state Idle, got %s", cfg.Model.InitialState)
	}
	if cfg.Model.Fade != 0.5 {
		t.Errorf("expected fade 0.5, got %f", cfg.Model.Fade)
	}

	if cfg.Camera.Distance != 8.0 {
		t.Errorf("expected camera distance 8, got %f", cfg.Camera.Distance)
	}
	if cfg.Camera.MinDistance >= cfg.Camera.MaxDistance {
		t.Error("camera distance limits inverted")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080

model:
  source: "https://example.com/robot.glb"
  initial_state: "Walking"
  fade: 0.25

camera:
  distance: 12
  zoom_sensitivity: 0.2

logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Model.Source != "https://example.com/robot.glb" {
		t.Errorf("unexpected model source %q", cfg.Model.Source)
	}
	if cfg.Model.InitialState != "Walking" {
		t.Errorf("unexpected initial state %q", cfg.Model.InitialState)
	}
	if cfg.Model.Fade != 0.25 {
		t.Errorf("unexpected fade %f", cfg.Model.Fade)
	}
	if cfg.Camera.Distance != 12 {
		t.Errorf("unexpected camera distance %f", cfg.Camera.Distance)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("unexpected log level %q", cfg.Logging.Level)
	}

	// Values absent from the file keep their defaults.
	if cfg.Camera.DragSensitivity != 0.005 {
		t.Errorf("drag sensitivity lost its default: %f", cfg.Camera.DragSensitivity)
	}
	if cfg.Model.Fade == 0 {
		t.Error("fade should merge, not zero out")
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := Default()
	cfg.Model.Source = "robot.glb"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Model.Source != "robot.glb" {
		t.Errorf("round trip lost model source: %q", loaded.Model.Source)
	}
}
