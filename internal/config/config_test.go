package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" || cfg.Tools.FFprobe != "ffprobe" {
		t.Fatalf("unexpected tool defaults: %+v", cfg.Tools)
	}
	if cfg.Montage.SegmentsFew != 4 || cfg.Montage.SegmentsSome != 6 || cfg.Montage.SegmentsLots != 9 {
		t.Fatalf("unexpected tier defaults: %+v", cfg.Montage)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "log_format = \"json\"\n\n[montage]\nsegments_few = 3\nfps = 24\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("expected json format, got %q", cfg.LogFormat)
	}
	if cfg.Montage.SegmentsFew != 3 || cfg.Montage.FPS != 24 {
		t.Fatalf("overrides not applied: %+v", cfg.Montage)
	}
	if cfg.Montage.SegmentsSome != 6 {
		t.Fatalf("untouched defaults lost: %+v", cfg.Montage)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[montage]\npan_distance = 0.9\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "pan_distance") {
		t.Fatalf("expected pan_distance error, got %v", err)
	}
}

func TestSegmentsForTier(t *testing.T) {
	cfg := Default()
	cases := map[string]int{
		"few":     4,
		"some":    6,
		"lots":    9,
		"LOTS":    9,
		"unknown": 6,
		"":        6,
	}
	for tier, want := range cases {
		if got := cfg.SegmentsForTier(tier); got != want {
			t.Fatalf("tier %q: got %d, want %d", tier, got, want)
		}
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected overwrite refusal")
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	if got := ExpandPath("~/x"); got != filepath.Join(home, "x") {
		t.Fatalf("tilde not expanded: %q", got)
	}
	if got := ExpandPath("/tmp/.."); got != "/" {
		t.Fatalf("path not cleaned: %q", got)
	}
}
