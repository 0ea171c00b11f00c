package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test window defaults
	if cfg.Window.Width != 1024 {
		t.Errorf("expected width 1024, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 768 {
		t.Errorf("expected height 768, got %d", cfg.Window.Height)
	}
	if cfg.Window.Title != "Town links" {
		t.Errorf("expected title 'Town links', got %q", cfg.Window.Title)
	}

	// Test renderer defaults
	if cfg.Renderer.Backend != BackendWebGPU {
		t.Errorf("expected backend %s, got %s", BackendWebGPU, cfg.Renderer.Backend)
	}
	if !cfg.Renderer.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Renderer.ClearColor != [4]float64{0, 0.2, 0, 1} {
		t.Errorf("unexpected clear color %v", cfg.Renderer.ClearColor)
	}

	// Test scene defaults
	if cfg.Scene.Eye != [3]float32{0, 1, 2} {
		t.Errorf("expected eye (0,1,2), got %v", cfg.Scene.Eye)
	}
	if cfg.Scene.FovY != 45 || cfg.Scene.Near != 0.1 || cfg.Scene.Far != 100 {
		t.Errorf("unexpected projection %v/%v/%v", cfg.Scene.FovY, cfg.Scene.Near, cfg.Scene.Far)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true

renderer:
  backend: opengl
  vsync: false
  clear_color: [0.1, 0.2, 0.3, 1]

scene:
  eye: [0, 2, 4]
  model_rotation_deg: 30

logging:
  level: "debug"
  log_file: "town.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Renderer.Backend != BackendOpenGL {
		t.Errorf("expected backend opengl, got %s", cfg.Renderer.Backend)
	}
	if cfg.Renderer.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Renderer.ClearColor != [4]float64{0.1, 0.2, 0.3, 1} {
		t.Errorf("unexpected clear color %v", cfg.Renderer.ClearColor)
	}
	if cfg.Scene.Eye != [3]float32{0, 2, 4} {
		t.Errorf("expected eye (0,2,4), got %v", cfg.Scene.Eye)
	}
	if cfg.Scene.ModelRotationDeg != 30 {
		t.Errorf("expected model rotation 30, got %v", cfg.Scene.ModelRotationDeg)
	}

	// Untouched keys keep their defaults
	if cfg.Window.Title != "Town links" {
		t.Errorf("expected default title to survive, got %q", cfg.Window.Title)
	}
	if cfg.Scene.Far != 100 {
		t.Errorf("expected default far plane to survive, got %v", cfg.Scene.Far)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "town.log" {
		t.Errorf("expected log file 'town.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromTOMLFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	tomlContent := `
[window]
width = 800
height = 600

[renderer]
backend = "opengl"
debug_overlay = true

[scene]
camera_speed = 0.5
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Errorf("expected 800x600, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Renderer.Backend != BackendOpenGL {
		t.Errorf("expected backend opengl, got %s", cfg.Renderer.Backend)
	}
	if !cfg.Renderer.DebugOverlay {
		t.Error("expected debug overlay to be enabled")
	}
	if cfg.Scene.CameraSpeed != 0.5 {
		t.Errorf("expected camera speed 0.5, got %v", cfg.Scene.CameraSpeed)
	}
	if !cfg.Renderer.VSync {
		t.Error("expected default vsync to survive")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Renderer.Backend = "vulkan"
	cfg.Scene.Near = 10
	cfg.Scene.Far = 1
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := err.Error()
	for _, want := range []string{"window size", "vulkan", "near=10", "verbose"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestValidateAcceptsImGuiBackend(t *testing.T) {
	cfg := Default()
	cfg.Renderer.Backend = BackendImGui
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected %s to validate, got %v", BackendImGui, err)
	}
}

func TestValidateEyeOnTarget(t *testing.T) {
	cfg := Default()
	cfg.Scene.Target = cfg.Scene.Eye
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when eye equals target")
	}
}

func TestSaveToAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{"saved.yaml", "saved.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "nested", name)

			cfg := Default()
			cfg.Window.Width = 640
			cfg.Renderer.Backend = BackendOpenGL
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("failed to save config: %v", err)
			}

			loaded := Default()
			if err := loadFromFile(loaded, path); err != nil {
				t.Fatalf("failed to load saved config: %v", err)
			}
			if loaded.Window.Width != 640 || loaded.Renderer.Backend != BackendOpenGL {
				t.Errorf("saved values lost: %+v", loaded.Window)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.toml in current directory
	configPath := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[window]\nwidth = 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.toml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "fullscreen flag",
			setup: func() {
				*flagFullscreen = true
			},
			verify: func(cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() {
				*flagFullscreen = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Window.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Window.Width)
				}
				if cfg.Window.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "backend flag",
			setup: func() {
				*flagBackend = BackendOpenGL
			},
			verify: func(cfg *Config) {
				if cfg.Renderer.Backend != BackendOpenGL {
					t.Errorf("expected backend opengl, got %s", cfg.Renderer.Backend)
				}
			},
			teardown: func() {
				*flagBackend = ""
			},
		},
		{
			name: "vsync off flag",
			setup: func() {
				*flagVSync = "off"
			},
			verify: func(cfg *Config) {
				if cfg.Renderer.VSync {
					t.Error("expected vsync to be disabled")
				}
			},
			teardown: func() {
				*flagVSync = ""
			},
		},
		{
			name: "logging flags",
			setup: func() {
				*flagLogLevel = "debug"
				*flagLogFile = "out.log"
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if cfg.Logging.LogFile != "out.log" {
					t.Errorf("expected log file 'out.log', got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() {
				*flagLogLevel = ""
				*flagLogFile = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("renderer:\n  backend: metal\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject an unknown backend")
	}
}
