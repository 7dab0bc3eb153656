package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"reelforge/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFileReadable(t *testing.T) {
	f := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(f, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckFileReadable("source", f); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckFileReadable("source", filepath.Join(t.TempDir(), "missing.mp4")); result.Passed {
		t.Fatal("expected failure for missing file")
	}
	if result := CheckFileReadable("source", t.TempDir()); result.Passed {
		t.Fatal("expected failure for directory path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("disk", dir, 0); !result.Passed {
		t.Fatalf("expected pass for zero requirement, got: %s", result.Detail)
	}
	// No filesystem has an exbibyte free.
	if result := CheckFreeSpace("disk", dir, 1<<30); result.Passed {
		t.Fatal("expected failure for absurd requirement")
	}
	if result := CheckFreeSpace("disk", filepath.Join(dir, "nope"), 0); result.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestCheckBinaries(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "shell", Command: "sh"},
		{Name: "ghost", Command: "definitely-not-a-binary-xyz"},
		{Name: "blank", Command: ""},
		{Name: "extra", Command: "definitely-not-a-binary-xyz", Optional: true},
	})
	if len(statuses) != 4 {
		t.Fatalf("expected 4 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("sh should be available: %s", statuses[0].Detail)
	}
	if statuses[1].Available || statuses[2].Available {
		t.Fatal("missing binaries reported available")
	}
	if !statuses[3].Result().Passed {
		t.Fatal("optional missing binary should still pass")
	}
}

func TestRunAll(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.TempRoot = t.TempDir()
	cfg.Montage.MinFreeGiB = 0
	cfg.Tools.FFmpeg = "sh"
	cfg.Tools.FFprobe = "sh"

	source := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(source, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := RunAll(&cfg, []string{source})
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	if failed := Failures(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}
