// Package app provides application wiring and configuration for the
// emulator.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Audio     AudioConfig     `json:"audio"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	configPath string
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Title string `json:"title"`
	Scale int    `json:"scale"` // SNES resolution multiplier
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	Backend string `json:"backend"` // "ebitengine", "headless"
	VSync   bool   `json:"vsync"`
}

// AudioConfig contains audio configuration
type AudioConfig struct {
	Enabled    bool `json:"enabled"`
	SampleRate int  `json:"sample_rate"`
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	LoopDetection bool `json:"loop_detection"`
	LoopLimit     int  `json:"loop_limit"`
	FrameLimit    int  `json:"frame_limit"` // headless mode only, 0 = unlimited
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	TraceCPU      bool `json:"trace_cpu"`
	DumpFrames    bool `json:"dump_frames"`
	FrameInterval int  `json:"frame_interval"`
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	SaveData string `json:"save_data"`
}

// NewConfig creates a configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title: "gosnes",
			Scale: 3,
		},
		Video: VideoConfig{
			Backend: "ebitengine",
			VSync:   true,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 32000,
		},
		Emulation: EmulationConfig{
			LoopDetection: false,
			LoopLimit:     4_000_000,
		},
		Debug: DebugConfig{
			FrameInterval: 60,
		},
		Paths: PathsConfig{
			SaveData: ".",
		},
	}
}

// LoadConfig reads a config file, falling back to defaults when it does not
// exist yet.
func LoadConfig(path string) (*Config, error) {
	config := NewConfig()
	config.configPath = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return config, nil
}

// Save writes the configuration back to its file
func (c *Config) Save() error {
	if c.configPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.configPath, data, 0o644)
}

// DefaultConfigPath returns the per-user config location
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "gosnes.json"
	}
	return filepath.Join(dir, "gosnes", "config.json")
}
