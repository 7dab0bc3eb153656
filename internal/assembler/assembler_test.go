package assembler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"reelforge/internal/config"
	"reelforge/internal/encoder"
	"reelforge/internal/services"
)

// fakeProbe answers duration and dimension queries from a fixed table keyed
// by file basename.
type fakeProbe struct {
	durations map[string]string
}

func (f *fakeProbe) Output(_ context.Context, _ string, args []string) ([]byte, error) {
	path := args[len(args)-1]
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "format=duration") {
		if duration, ok := f.durations[filepath.Base(path)]; ok {
			return []byte(duration + "\n"), nil
		}
		return []byte("20.000000\n"), nil
	}
	if strings.Contains(joined, "width,height") {
		return []byte("1920x1080\n"), nil
	}
	return nil, fmt.Errorf("unexpected probe query: %s", joined)
}

// fakeTool scripts external tool invocations. Calls whose joined arguments
// contain a failure key error that many times; everything else succeeds and
// materializes the output file when the invocation names one.
type fakeTool struct {
	mu       sync.Mutex
	calls    [][]string
	failures map[string]int
}

func (f *fakeTool) Run(_ context.Context, _ string, args []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), args...))
	joined := strings.Join(args, " ")
	for key, remaining := range f.failures {
		if remaining > 0 && strings.Contains(joined, key) {
			f.failures[key] = remaining - 1
			return "synthetic failure", errors.New("exit status 1")
		}
	}
	last := args[len(args)-1]
	if last == "-" {
		return "", nil
	}
	if err := os.WriteFile(last, []byte("payload"), 0o644); err != nil {
		return "", err
	}
	return "", nil
}

func (f *fakeTool) callsMatching(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, call := range f.calls {
		if strings.Contains(strings.Join(call, " "), key) {
			count++
		}
	}
	return count
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Tools.FFmpeg = "sh"
	cfg.Tools.FFprobe = "sh"
	cfg.Paths.TempRoot = t.TempDir()
	cfg.Montage.MinFreeGiB = 0
	return &cfg
}

func writeSource(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestAssembler(t *testing.T, cfg *config.Config, tool *fakeTool, probe *fakeProbe) *Assembler {
	t.Helper()
	return New(cfg,
		WithFFmpegExecutor(tool),
		WithFFprobeExecutor(probe),
		WithRand(rand.New(rand.NewSource(7))),
		WithEncoderProfile(encoder.Profile{EncoderID: "libx264", ThreadCount: 2}),
	)
}

func baseRequest(t *testing.T, source string) Request {
	t.Helper()
	return Request{
		Sources:         []string{source},
		OutputPath:      filepath.Join(t.TempDir(), "out", "final.mp4"),
		AspectName:      "vertical_portrait",
		Tier:            "few",
		DurationSeconds: 20,
		Texts:           []string{"Big night", "Link in bio"},
		Handle:          "@reelforge",
	}
}

func TestAssembleHappyPath(t *testing.T) {
	cfg := testConfig(t)
	source := writeSource(t, "clip.mp4")
	probe := &fakeProbe{durations: map[string]string{"clip.mp4": "60.000000"}}
	tool := &fakeTool{}
	a := newTestAssembler(t, cfg, tool, probe)

	result, err := a.Assemble(context.Background(), baseRequest(t, source))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if result.SegmentCount != cfg.Montage.SegmentsFew {
		t.Fatalf("segment count %d, want %d", result.SegmentCount, cfg.Montage.SegmentsFew)
	}
	if result.UsedFallback {
		t.Fatal("happy path should not use fallback")
	}
	if _, err := os.Stat(result.OutputPath); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if tool.callsMatching("-f concat") == 0 {
		t.Fatal("expected demuxer concat invocation")
	}
	if tool.callsMatching("drawtext") == 0 {
		t.Fatal("expected overlay composite invocation")
	}
}

func TestAssembleReencodesWhenStreamCopyRejected(t *testing.T) {
	cfg := testConfig(t)
	source := writeSource(t, "clip.mp4")
	probe := &fakeProbe{durations: map[string]string{"clip.mp4": "60.000000"}}
	tool := &fakeTool{failures: map[string]int{"-c copy": 1}}
	a := newTestAssembler(t, cfg, tool, probe)

	result, err := a.Assemble(context.Background(), baseRequest(t, source))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if result.UsedFallback {
		t.Fatal("re-encode path should not count as fallback")
	}
	if tool.callsMatching("concat_reencoded.mp4") == 0 {
		t.Fatal("expected re-encoded concat invocation")
	}
	if tool.callsMatching("aresample=async=1") == 0 {
		t.Fatal("re-encode should resample audio across segment joints")
	}
}

func TestAssembleFallsBackToSinglePass(t *testing.T) {
	cfg := testConfig(t)
	source := writeSource(t, "clip.mp4")
	probe := &fakeProbe{durations: map[string]string{"clip.mp4": "60.000000"}}
	// Every per-file composite fails; only the single-pass graph survives.
	tool := &fakeTool{failures: map[string]int{"-vf drawtext": 100}}
	a := newTestAssembler(t, cfg, tool, probe)

	result, err := a.Assemble(context.Background(), baseRequest(t, source))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !result.UsedFallback {
		t.Fatal("expected fallback result")
	}
	if tool.callsMatching("-filter_complex") == 0 {
		t.Fatal("expected single-pass filter_complex invocation")
	}
	// The fallback must consume the segment files the attempt already
	// extracted, not re-trim the sources.
	fallbackCalls := 0
	for _, call := range tool.calls {
		joined := strings.Join(call, " ")
		if !strings.Contains(joined, "-filter_complex") {
			continue
		}
		fallbackCalls++
		if !strings.Contains(joined, "seg_000.mp4") {
			t.Fatalf("fallback should reuse extracted segments: %s", joined)
		}
		if strings.Contains(joined, "-ss ") {
			t.Fatalf("fallback should not re-trim sources: %s", joined)
		}
	}
	if fallbackCalls == 0 {
		t.Fatal("no filter_complex invocation recorded")
	}
	if _, err := os.Stat(result.OutputPath); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if _, err := os.Stat(result.OutputPath + ".part"); !os.IsNotExist(err) {
		t.Fatal("temporary fallback output left behind")
	}
}

func TestAssembleFallbackVerifiesDuration(t *testing.T) {
	cfg := testConfig(t)
	source := writeSource(t, "clip.mp4")
	// The per-file composite is dead and the single-pass output measures far
	// off plan; the run must fail rather than deliver the bad file.
	probe := &fakeProbe{durations: map[string]string{"clip.mp4": "60.000000", "fallback.mp4": "35.000000"}}
	tool := &fakeTool{failures: map[string]int{"-vf drawtext": 100}}
	a := newTestAssembler(t, cfg, tool, probe)

	req := baseRequest(t, source)
	_, err := a.Assemble(context.Background(), req)
	if !errors.Is(err, services.ErrOutputVerification) {
		t.Fatalf("expected verification error from fallback, got %v", err)
	}
	if _, err := os.Stat(req.OutputPath); !os.IsNotExist(err) {
		t.Fatal("unverified fallback output was delivered")
	}
}

func TestAssembleRejectsShortSource(t *testing.T) {
	cfg := testConfig(t)
	source := writeSource(t, "short.mp4")
	probe := &fakeProbe{durations: map[string]string{"short.mp4": "10.000000"}}
	a := newTestAssembler(t, cfg, &fakeTool{}, probe)

	_, err := a.Assemble(context.Background(), baseRequest(t, source))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for 10s source, got %v", err)
	}
}

func TestAssembleRejectsUnknownAspect(t *testing.T) {
	cfg := testConfig(t)
	source := writeSource(t, "clip.mp4")
	tool := &fakeTool{}
	a := newTestAssembler(t, cfg, tool, &fakeProbe{})
	req := baseRequest(t, source)
	req.AspectName = "invalid_aspect"
	_, err := a.Assemble(context.Background(), req)
	if err == nil {
		t.Fatal("expected error for unknown aspect")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "aspect") {
		t.Fatalf("error should mention aspect: %v", err)
	}
	if len(tool.calls) != 0 {
		t.Fatalf("no tool invocation expected, saw %d", len(tool.calls))
	}
}

func TestAssembleConcatFailureReachesFallback(t *testing.T) {
	cfg := testConfig(t)
	source := writeSource(t, "clip.mp4")
	probe := &fakeProbe{durations: map[string]string{"clip.mp4": "60.000000"}}
	// Both concat paths (stream copy and re-encode) are dead on every
	// attempt; only the single-pass graph can finish the run.
	tool := &fakeTool{failures: map[string]int{"-f concat": 100}}
	a := newTestAssembler(t, cfg, tool, probe)

	result, err := a.Assemble(context.Background(), baseRequest(t, source))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !result.UsedFallback {
		t.Fatal("expected fallback result")
	}
	if _, err := os.Stat(result.OutputPath); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestAssembleFailsVerificationOnDurationDrift(t *testing.T) {
	cfg := testConfig(t)
	source := writeSource(t, "clip.mp4")
	// Output measures 35s against a 20s plan: past tolerance on every
	// attempt, and verification failures poison the fallback output too.
	probe := &fakeProbe{durations: map[string]string{"clip.mp4": "60.000000", "composited.mp4": "35.000000"}}
	tool := &fakeTool{failures: map[string]int{"-filter_complex": 100}}
	a := newTestAssembler(t, cfg, tool, probe)

	_, err := a.Assemble(context.Background(), baseRequest(t, source))
	if !errors.Is(err, services.ErrOutputVerification) {
		t.Fatalf("expected verification error, got %v", err)
	}
	// The fallback's own failure rides along with the stage error.
	if !errors.Is(err, services.ErrCompositeFailed) {
		t.Fatalf("expected fallback failure in error chain, got %v", err)
	}
	if !strings.Contains(err.Error(), "fallback") {
		t.Fatalf("error should carry the fallback diagnostic: %v", err)
	}
}

func TestAssemblePrependsTrimmedIntro(t *testing.T) {
	cfg := testConfig(t)
	source := writeSource(t, "clip.mp4")
	probe := &fakeProbe{durations: map[string]string{
		"clip.mp4":       "60.000000",
		"intro.mp4":      "12.000000",
		"composited.mp4": "25.000000",
	}}
	tool := &fakeTool{}
	a := newTestAssembler(t, cfg, tool, probe)

	req := baseRequest(t, source)
	req.IntroPath = writeSource(t, "intro.mp4")

	result, err := a.Assemble(context.Background(), req)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// Four 5s segments plus the default 5s intro trim.
	if result.DurationSeconds != 25 {
		t.Fatalf("planned duration %.1f, want 25", result.DurationSeconds)
	}
	found := false
	for _, call := range tool.calls {
		joined := strings.Join(call, " ")
		if strings.Contains(joined, "intro.mp4") && strings.Contains(joined, "-t 5.000") {
			found = true
		}
	}
	if !found {
		t.Fatal("intro encode should trim the clip to the planned length")
	}
}

func TestResolveFixedPanDirection(t *testing.T) {
	cfg := testConfig(t)
	a := newTestAssembler(t, cfg, &fakeTool{}, &fakeProbe{})
	req := baseRequest(t, writeSource(t, "clip.mp4"))
	req.PanStrategy = "fixed"
	req.PanDirection = "zoom_in"
	plan, err := a.resolve(req)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	directions := a.directionSequence(plan, 3)
	for _, direction := range directions {
		if direction.String() != "zoom_in" {
			t.Fatalf("fixed strategy produced %s", direction)
		}
	}

	req.PanDirection = "diagonal"
	if _, err := a.resolve(req); err == nil {
		t.Fatal("expected error for unknown pan direction")
	}
}

func TestAssembleMixesAudioBed(t *testing.T) {
	cfg := testConfig(t)
	source := writeSource(t, "clip.mp4")
	probe := &fakeProbe{durations: map[string]string{"clip.mp4": "60.000000"}}
	tool := &fakeTool{}
	a := newTestAssembler(t, cfg, tool, probe)

	req := baseRequest(t, source)
	req.AudioPath = writeSource(t, "bed.m4a")
	req.AudioVolume = 0.5
	if _, err := a.Assemble(context.Background(), req); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if tool.callsMatching("amix=inputs=2") != 1 {
		t.Fatal("expected one audio mix invocation")
	}
	if tool.callsMatching("volume=0.50") != 1 {
		t.Fatal("expected bed volume in mix graph")
	}
}

func TestAssemblePanNoneSkipsMotion(t *testing.T) {
	cfg := testConfig(t)
	source := writeSource(t, "clip.mp4")
	probe := &fakeProbe{durations: map[string]string{"clip.mp4": "60.000000"}}
	tool := &fakeTool{}
	a := newTestAssembler(t, cfg, tool, probe)

	req := baseRequest(t, source)
	req.PanStrategy = "none"
	if _, err := a.Assemble(context.Background(), req); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if tool.callsMatching("-f lavfi") != 0 {
		t.Fatal("pan none should never dry-run motion fragments")
	}
	if tool.callsMatching("zoompan") != 0 {
		t.Fatal("pan none should never synthesize zoom chains")
	}
}

func TestResolveRejectsUnknownEasing(t *testing.T) {
	cfg := testConfig(t)
	a := newTestAssembler(t, cfg, &fakeTool{}, &fakeProbe{})
	req := baseRequest(t, writeSource(t, "clip.mp4"))
	req.EasingName = "bouncy"
	if _, err := a.resolve(req); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for unknown easing, got %v", err)
	}
}

func TestResolveRejectsNegativeIntroDuration(t *testing.T) {
	cfg := testConfig(t)
	a := newTestAssembler(t, cfg, &fakeTool{}, &fakeProbe{})
	req := baseRequest(t, writeSource(t, "clip.mp4"))
	req.IntroSeconds = -1
	if _, err := a.resolve(req); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for negative intro duration, got %v", err)
	}
}

func TestStateTransitions(t *testing.T) {
	legal := []struct{ from, to State }{
		{StateInit, StateSegmentsExtracted},
		{StateSegmentsExtracted, StateConcatenated},
		{StateConcatenated, StateComposited},
		{StateComposited, StateVerified},
		{StateVerified, StateDone},
		{StateConcatenated, StateFailed},
	}
	for _, tc := range legal {
		if !CanTransition(tc.from, tc.to) {
			t.Fatalf("%s -> %s should be legal", tc.from, tc.to)
		}
	}
	illegal := []struct{ from, to State }{
		{StateInit, StateConcatenated},
		{StateConcatenated, StateInit},
		{StateDone, StateFailed},
		{StateFailed, StateInit},
	}
	for _, tc := range illegal {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("%s -> %s should be illegal", tc.from, tc.to)
		}
	}
}
