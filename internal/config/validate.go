package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMontage(); err != nil {
		return err
	}
	if err := c.validateOverlay(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

func (c *Config) validateMontage() error {
	for name, count := range map[string]int{
		"segments_few":  c.Montage.SegmentsFew,
		"segments_some": c.Montage.SegmentsSome,
		"segments_lots": c.Montage.SegmentsLots,
	} {
		if count < 1 {
			return fmt.Errorf("montage.%s must be at least 1", name)
		}
	}
	if c.Montage.FPS < 1 || c.Montage.FPS > 120 {
		return errors.New("montage.fps must be between 1 and 120")
	}
	if c.Montage.PanDistance < 0.05 || c.Montage.PanDistance > 0.5 {
		return errors.New("montage.pan_distance must be between 0.05 and 0.5")
	}
	if c.Montage.EnergyWindowSecs <= 0 {
		return errors.New("montage.energy_window_seconds must be positive")
	}
	return nil
}

func (c *Config) validateOverlay() error {
	if c.Overlay.MarginFraction < 0 || c.Overlay.MarginFraction >= 1 {
		return errors.New("overlay.margin_fraction must be within [0, 1)")
	}
	if c.Overlay.MaxLines < 1 {
		return errors.New("overlay.max_lines must be at least 1")
	}
	if c.Overlay.FadeSeconds < 0 {
		return errors.New("overlay.fade_seconds must not be negative")
	}
	if c.Overlay.CueGapSeconds < 0 {
		return errors.New("overlay.cue_gap_seconds must not be negative")
	}
	return nil
}
