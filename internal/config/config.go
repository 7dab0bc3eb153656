package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Tools names the external binaries the pipeline drives.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Paths contains directory configuration.
type Paths struct {
	TempRoot string `toml:"temp_root"`
	LogDir   string `toml:"log_dir"`
}

// Montage contains tunables for plan construction.
type Montage struct {
	SegmentsFew      int     `toml:"segments_few"`
	SegmentsSome     int     `toml:"segments_some"`
	SegmentsLots     int     `toml:"segments_lots"`
	FPS              int     `toml:"fps"`
	PanDistance      float64 `toml:"pan_distance"`
	MinFreeGiB       int     `toml:"min_free_gib"`
	EnergyWindowSecs float64 `toml:"energy_window_seconds"`
}

// Overlay contains text overlay layout tunables.
type Overlay struct {
	MarginFraction float64 `toml:"margin_fraction"`
	MaxLines       int     `toml:"max_lines"`
	FadeSeconds    float64 `toml:"fade_seconds"`
	CueGapSeconds  float64 `toml:"cue_gap_seconds"`
}

// Config is the root configuration document.
type Config struct {
	Tools   Tools   `toml:"tools"`
	Paths   Paths   `toml:"paths"`
	Montage Montage `toml:"montage"`
	Overlay Overlay `toml:"overlay"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// SegmentsForTier maps a tier name to a fixed segment count. Unknown tiers
// fall back to the "some" count.
func (c *Config) SegmentsForTier(tier string) int {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "few":
		return c.Montage.SegmentsFew
	case "lots":
		return c.Montage.SegmentsLots
	default:
		return c.Montage.SegmentsSome
	}
}

// DefaultConfigPath returns the expected config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "reelforge", "config.toml"), nil
}

// Load reads the configuration from path, or from the default location when
// path is empty. A missing file yields defaults.
func Load(path string) (*Config, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		resolved = defaultPath
	}
	resolved = ExpandPath(resolved)

	cfg := Default()
	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Defaults apply when no config file exists.
	default:
		return nil, fmt.Errorf("read config %s: %w", resolved, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	path = ExpandPath(strings.TrimSpace(path))
	if path == "" {
		return errors.New("config path required")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
