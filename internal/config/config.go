// Package config loads batch render settings from JSON or YAML and merges
// command-line overrides.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	ModelDir  string `json:"model_dir" yaml:"model_dir"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Render settings
	RenderSize  int     `json:"render_size" yaml:"render_size"`
	Supersample int     `json:"supersample" yaml:"supersample"`
	Format      string  `json:"format" yaml:"format"`
	Workers     int     `json:"workers" yaml:"workers"`
	Yaw         float64 `json:"yaw" yaml:"yaw"`
	Pitch       float64 `json:"pitch" yaml:"pitch"`
	Nearest     bool    `json:"nearest" yaml:"nearest"`

	// Pose selection
	Sequence int `json:"sequence" yaml:"sequence"`
	Frame    int `json:"frame" yaml:"frame"`
	Body     int `json:"body" yaml:"body"`
	Skin     int `json:"skin" yaml:"skin"`
}

// Load reads a config file. Files ending in .yaml or .yml are YAML, anything
// else is JSON. Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings. Zero
// values leave the file's setting alone.
type Flags struct {
	ModelDir  string
	OutputDir string
	Format    string
	Size      int
	Workers   int
	Sequence  int
	Frame     int
}

// Resolve applies flags, then fills in any empty fields with defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.ModelDir != "" {
		c.ModelDir = flags.ModelDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Size > 0 {
		c.RenderSize = flags.Size
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Sequence > 0 {
		c.Sequence = flags.Sequence
	}
	if flags.Frame > 0 {
		c.Frame = flags.Frame
	}

	if c.ModelDir == "" {
		c.ModelDir = detectModelDir()
	}
	if c.OutputDir == "" {
		c.OutputDir = "renders"
		if c.ModelDir != "" {
			c.OutputDir = filepath.Join(filepath.Dir(c.ModelDir), "renders")
		}
	} else if !filepath.IsAbs(c.OutputDir) && c.ModelDir != "" {
		c.OutputDir = filepath.Join(filepath.Dir(c.ModelDir), c.OutputDir)
	}

	if c.RenderSize <= 0 {
		c.RenderSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Format == "" {
		c.Format = "webp"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Yaw == 0 && c.Pitch == 0 {
		c.Yaw, c.Pitch = 30, 10
	}
}

// detectModelDir looks for a models directory in the usual game layouts,
// starting at the working directory.
func detectModelDir() string {
	cwd, _ := os.Getwd()
	for _, dir := range []string{
		filepath.Join(cwd, "models"),
		filepath.Join(cwd, "valve", "models"),
		filepath.Join(cwd, "cstrike", "models"),
		filepath.Join(filepath.Dir(cwd), "models"),
	} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
