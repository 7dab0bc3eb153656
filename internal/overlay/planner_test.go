package overlay

import (
	"strings"
	"testing"

	"reelforge/internal/reframe"
)

func portraitTarget(t *testing.T) reframe.Target {
	t.Helper()
	target, err := reframe.LookupTarget("vertical_portrait")
	if err != nil {
		t.Fatalf("LookupTarget: %v", err)
	}
	return target
}

func TestSizeForTextLengthBands(t *testing.T) {
	style, err := LookupStyle("default")
	if err != nil {
		t.Fatalf("LookupStyle: %v", err)
	}
	cases := []struct {
		text string
		want int
	}{
		{"GO!", 72},                              // 1.5x base, clamped to max
		{"Tonight", 57},                          // 7 runes, 1.2x
		{"See you at the gig", 48},               // 18 runes, 1.0x
		{"Doors open at eight tonight!!", 38},    // 29 runes, 0.8x
		{"This caption keeps going on and on and on", 28}, // 0.6x
	}
	for _, tc := range cases {
		if got := sizeForText(style, tc.text); got != tc.want {
			t.Fatalf("sizeForText(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestWrapTextNeverExceedsLimit(t *testing.T) {
	const maxChars = 10
	lines := wrapText("The quick brown fox jumps", maxChars)
	if len(lines) == 0 {
		t.Fatal("expected wrapped lines")
	}
	for _, line := range lines {
		if len([]rune(line)) > maxChars {
			t.Fatalf("line %q exceeds %d chars", line, maxChars)
		}
	}
	joined := strings.Join(lines, " ")
	if joined != "The quick brown fox jumps" {
		t.Fatalf("wrap lost content: %q", joined)
	}
}

func TestWrapTextForceSplitsLongWord(t *testing.T) {
	lines := wrapText("Antidisestablishmentarianism", 10)
	if len(lines) != 3 {
		t.Fatalf("expected 3 forced splits, got %v", lines)
	}
	for _, line := range lines {
		if len(line) > 10 {
			t.Fatalf("forced split line %q exceeds limit", line)
		}
	}
}

func TestFitTextShrinksThenTruncates(t *testing.T) {
	style, err := LookupStyle("impact")
	if err != nil {
		t.Fatalf("LookupStyle: %v", err)
	}
	text := strings.Repeat("loud noises everywhere ", 8)
	size, lines := fitText(style, text, 648, 3)
	if len(lines) > 3 {
		t.Fatalf("fitText returned %d lines, want at most 3", len(lines))
	}
	if size < style.MinSize || size > style.MaxSize {
		t.Fatalf("fitText size %d outside [%d,%d]", size, style.MinSize, style.MaxSize)
	}
}

func TestFitTextReachesMinimumSizeBeforeTruncating(t *testing.T) {
	// A shrink step from 26 overshoots a minimum of 24; the text fits on one
	// line at exactly 24, so nothing should be cut.
	style := Style{BaseSize: 26, MinSize: 24, MaxSize: 26}
	size, lines := fitText(style, "ab cd", 72, 1)
	if size != 24 {
		t.Fatalf("fitText size %d, want minimum 24", size)
	}
	if len(lines) != 1 || lines[0] != "ab cd" {
		t.Fatalf("fitText truncated despite fitting at minimum: %v", lines)
	}
}

func TestPlanSequenceTimingAndDrop(t *testing.T) {
	planner := New(WithFadeSeconds(0.5), WithGapSeconds(2))
	target := portraitTarget(t)
	style, _ := LookupStyle("default")
	cues, err := planner.PlanSequence(
		[]string{"First", "Second", "Third", "Never shown"},
		style, target, 4, 14, MotionNone)
	if err != nil {
		t.Fatalf("PlanSequence: %v", err)
	}
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues (last dropped), got %d", len(cues))
	}
	if cues[0].StartTime != 0 || cues[0].EndTime != 4 {
		t.Fatalf("first cue window [%.1f,%.1f]", cues[0].StartTime, cues[0].EndTime)
	}
	if cues[1].StartTime != 6 {
		t.Fatalf("second cue start %.1f, want 6 (end of first plus gap)", cues[1].StartTime)
	}
	last := cues[2]
	if last.EndTime != 14 {
		t.Fatalf("final cue should clip to montage end, got %.1f", last.EndTime)
	}
	if last.StartTime != 12 {
		t.Fatalf("final cue start %.1f, want 12", last.StartTime)
	}
	if last.FadeSeconds > last.Duration()/2 {
		t.Fatalf("clipped cue fade %.2f exceeds half its %.2fs window", last.FadeSeconds, last.Duration())
	}
}

func TestPlanRepeatsScalesWithLength(t *testing.T) {
	planner := New()
	target := portraitTarget(t)
	style, _ := LookupStyle("default")

	cases := []struct {
		total float64
		want  int
	}{
		{30, 3},
		{85, 4},
		{300, 5},
	}
	for _, tc := range cases {
		cues, err := planner.PlanRepeats("@reelforge", style, target, tc.total, MotionNone)
		if err != nil {
			t.Fatalf("PlanRepeats(%.0f): %v", tc.total, err)
		}
		if len(cues) != tc.want {
			t.Fatalf("PlanRepeats(%.0f) = %d cues, want %d", tc.total, len(cues), tc.want)
		}
		for i, cue := range cues {
			if cue.StartTime <= 0 || cue.EndTime > tc.total {
				t.Fatalf("cue %d window [%.1f,%.1f] outside montage", i, cue.StartTime, cue.EndTime)
			}
			if i > 0 && cue.StartTime <= cues[i-1].StartTime {
				t.Fatalf("cue %d not after previous", i)
			}
		}
	}
}

func TestPlanCueRejectsEmptyText(t *testing.T) {
	planner := New()
	style, _ := LookupStyle("default")
	if _, err := planner.PlanCue("   ", style, portraitTarget(t), 3, MotionNone); err == nil {
		t.Fatal("expected error for empty cue text")
	}
}

func TestLookupStyleUnknown(t *testing.T) {
	if _, err := LookupStyle("vaporwave"); err == nil {
		t.Fatal("expected error for unknown style")
	}
	style, err := LookupStyle("")
	if err != nil {
		t.Fatalf("empty style name should resolve to default: %v", err)
	}
	if style.Name != "default" {
		t.Fatalf("got style %q, want default", style.Name)
	}
}
