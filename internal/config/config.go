// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Model    ModelConfig    `yaml:"model"`
	Camera   CameraConfig   `yaml:"camera"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ModelConfig holds the asset source and animation defaults.
type ModelConfig struct {
	// Source is a http(s):// URL or a local .glb path. Empty prompts
	// with a file dialog.
	Source       string  `yaml:"source"`
	InitialState string  `yaml:"initial_state"`
	Fade         float32 `yaml:"fade"` // state cross-fade, seconds
}

// CameraConfig holds orbit camera tuning.
type CameraConfig struct {
	Distance        float32 `yaml:"distance"`
	MinDistance     float32 `yaml:"min_distance"`
	MaxDistance     float32 `yaml:"max_distance"`
	DragSensitivity float32 `yaml:"drag_sensitivity"`
	ZoomSensitivity float32 `yaml:"zoom_sensitivity"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:  1280,
			Height: 800,
		},
		Model: ModelConfig{
			InitialState: "Idle",
			Fade:         0.5,
		},
		Camera: CameraConfig{
			Distance:        8.0,
			MinDistance:     1.0,
			MaxDistance:     60.0,
			DragSensitivity: 0.005,
			ZoomSensitivity: 0.1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
