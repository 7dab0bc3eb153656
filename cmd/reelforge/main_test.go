package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPresetsCommandListsEverything(t *testing.T) {
	output, err := execute(t, "presets")
	if err != nil {
		t.Fatalf("presets: %v", err)
	}
	for _, want := range []string{"vertical_portrait", "square", "impact", "zoom_in", "left_to_right"} {
		if !strings.Contains(output, want) {
			t.Fatalf("presets output missing %q:\n%s", want, output)
		}
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	output, err := execute(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Fatalf("output should name the written path:\n%s", output)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if !strings.Contains(string(data), "[montage]") {
		t.Fatal("sample config missing montage section")
	}

	if _, err := execute(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestConfigValidateWithDefaults(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := execute(t, "config", "init", "--path", target); err != nil {
		t.Fatalf("config init: %v", err)
	}
	output, err := execute(t, "--config", target, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(output, "Configuration valid") {
		t.Fatalf("unexpected validate output:\n%s", output)
	}
}

func TestDefaultOutputName(t *testing.T) {
	got := defaultOutputName("/media/My Gig: Night One.mov", "vertical_portrait")
	if got != "My Gig- Night One_vertical_portrait.mp4" {
		t.Fatalf("defaultOutputName = %q", got)
	}
	if got := defaultOutputName("???", "square"); got != "montage_square.mp4" {
		t.Fatalf("defaultOutputName fallback = %q", got)
	}
}
