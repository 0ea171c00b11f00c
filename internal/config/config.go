// Package config handles application configuration loading and management.
package config

// Backend names accepted by renderer.backend.
const (
	BackendWebGPU = "webgpu"
	BackendOpenGL = "opengl"
	// BackendImGui renders through OpenGL inside an ImGui debug window.
	BackendImGui = "opengl-imgui"
)

// Config holds all application settings.
type Config struct {
	Window   WindowConfig   `yaml:"window" toml:"window"`
	Renderer RendererConfig `yaml:"renderer" toml:"renderer"`
	Scene    SceneConfig    `yaml:"scene" toml:"scene"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title" toml:"title"`
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	Fullscreen bool   `yaml:"fullscreen" toml:"fullscreen"`
}

// RendererConfig holds GPU settings.
type RendererConfig struct {
	Backend         string     `yaml:"backend" toml:"backend"`                   // webgpu, opengl or opengl-imgui
	VSync           bool       `yaml:"vsync" toml:"vsync"`                       // FIFO presentation
	PowerPreference string     `yaml:"power_preference" toml:"power_preference"` // high or low
	ClearColor      [4]float64 `yaml:"clear_color" toml:"clear_color"`
	ValidateShaders bool       `yaml:"validate_shaders" toml:"validate_shaders"`
	DebugOverlay    bool       `yaml:"debug_overlay" toml:"debug_overlay"`
}

// SceneConfig holds camera and model settings.
type SceneConfig struct {
	FovY             float32    `yaml:"fov_y" toml:"fov_y"`
	Near             float32    `yaml:"near" toml:"near"`
	Far              float32    `yaml:"far" toml:"far"`
	Eye              [3]float32 `yaml:"eye" toml:"eye"`
	Target           [3]float32 `yaml:"target" toml:"target"`
	ModelRotationDeg float32    `yaml:"model_rotation_deg" toml:"model_rotation_deg"`
	CameraSpeed      float32    `yaml:"camera_speed" toml:"camera_speed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`
	LogFile    string `yaml:"log_file" toml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Town links",
			Width:  1024,
			Height: 768,
		},
		Renderer: RendererConfig{
			Backend:         BackendWebGPU,
			VSync:           true,
			PowerPreference: "high",
			ClearColor:      [4]float64{0, 0.2, 0, 1},
		},
		Scene: SceneConfig{
			FovY:        45,
			Near:        0.1,
			Far:         100,
			Eye:         [3]float32{0, 1, 2},
			CameraSpeed: 0.2,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}
