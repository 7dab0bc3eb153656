package segments

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"reelforge/internal/logging"
	"reelforge/internal/media/ffmpeg"
	"reelforge/internal/media/ffprobe"
	"reelforge/internal/services"
)

// Selector picks non-overlapping candidate time ranges from a source video,
// biased toward audio-energy peaks.
type Selector struct {
	runner        *ffmpeg.Runner
	rng           *rand.Rand
	windowSeconds float64
	logger        *slog.Logger
}

// Option configures the selector.
type Option func(*Selector)

// WithRand injects the randomness source used for the final presentation
// shuffle, making selection reproducible in tests.
func WithRand(rng *rand.Rand) Option {
	return func(s *Selector) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithWindowSeconds overrides the energy-analysis window length.
func WithWindowSeconds(seconds float64) Option {
	return func(s *Selector) {
		if seconds > 0 {
			s.windowSeconds = seconds
		}
	}
}

// WithLogger routes selection logs to the provided logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		s.logger = logging.NewComponentLogger(logger, "selector")
	}
}

// New constructs a selector that measures audio energy through runner.
func New(runner *ffmpeg.Runner, opts ...Option) *Selector {
	s := &Selector{
		runner:        runner,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		windowSeconds: 3.0,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns countNeeded candidates of targetDurationEach seconds from
// the described source. Candidates prefer high-energy windows, keep a minimum
// start-time gap of half the segment duration (relaxed only if the strict
// pass underflows), and come back in shuffled presentation order.
func (s *Selector) Select(ctx context.Context, descriptor ffprobe.Descriptor, countNeeded int, targetDurationEach float64) ([]Candidate, error) {
	if countNeeded < 1 {
		return nil, services.Wrap(services.ErrConfiguration, "selector", "select", "segment count must be positive", nil)
	}
	usable := descriptor.DurationSeconds - targetDurationEach
	if usable < 0 {
		return nil, services.Wrap(services.ErrInsufficientSegments, "selector", "select",
			fmt.Sprintf("source %.1fs shorter than one %.1fs segment", descriptor.DurationSeconds, targetDurationEach), nil)
	}

	starts := s.candidateStarts(ctx, descriptor, countNeeded, targetDurationEach, usable)

	minGap := 0.5 * targetDurationEach
	selected := greedySelect(starts, countNeeded, minGap)
	if len(selected) < countNeeded {
		// Relaxed pass: admit any unselected candidate regardless of spacing.
		selected = relaxedSelect(starts, selected, countNeeded)
	}
	if len(selected) < countNeeded {
		return nil, services.Wrap(services.ErrInsufficientSegments, "selector", "select",
			fmt.Sprintf("found %d of %d candidates even after relaxing spacing", len(selected), countNeeded), nil)
	}

	// Presentation order is intentionally decorrelated from timeline order.
	s.rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	candidates := make([]Candidate, 0, len(selected))
	for _, start := range selected {
		duration := targetDurationEach
		if start+duration > descriptor.DurationSeconds {
			duration = descriptor.DurationSeconds - start
		}
		candidates = append(candidates, Candidate{
			SourcePath: descriptor.Path,
			StartTime:  start,
			Duration:   duration,
		})
	}
	return candidates, nil
}

// candidateStarts merges high-energy window starts with evenly spaced
// backfill, deduplicated and sorted by time.
func (s *Selector) candidateStarts(ctx context.Context, descriptor ffprobe.Descriptor, countNeeded int, targetDurationEach, usable float64) []float64 {
	var starts []float64
	windows, err := s.measureEnergy(ctx, descriptor.Path, s.windowSeconds)
	if err != nil {
		// The heuristic is a coarse proxy; selection proceeds on even spacing.
		s.logger.Warn("audio energy analysis failed, falling back to even spacing",
			slog.String("source", descriptor.Path),
			slog.String("error", err.Error()))
	}
	for _, window := range windows {
		if window.startTime >= 0 && window.startTime <= usable {
			starts = append(starts, window.startTime)
		}
	}

	if len(starts) < 2*countNeeded {
		starts = append(starts, evenlySpaced(usable, 2*countNeeded)...)
	}

	sort.Float64s(starts)
	return dedupe(starts)
}

// evenlySpaced returns count timestamps across [0, usable].
func evenlySpaced(usable float64, count int) []float64 {
	if count < 1 || usable < 0 {
		return nil
	}
	step := usable / float64(count)
	points := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		points = append(points, float64(i)*step)
	}
	return points
}

func dedupe(sorted []float64) []float64 {
	const epsilon = 0.01
	out := sorted[:0]
	for _, v := range sorted {
		if len(out) == 0 || v-out[len(out)-1] > epsilon {
			out = append(out, v)
		}
	}
	return out
}

// greedySelect walks candidates in time order, keeping every start at least
// minGap away from all previously kept starts.
func greedySelect(starts []float64, countNeeded int, minGap float64) []float64 {
	selected := make([]float64, 0, countNeeded)
	for _, start := range starts {
		if len(selected) == countNeeded {
			break
		}
		ok := true
		for _, chosen := range selected {
			if diff := start - chosen; diff < minGap && diff > -minGap {
				ok = false
				break
			}
		}
		if ok {
			selected = append(selected, start)
		}
	}
	return selected
}

// relaxedSelect tops up an underflowed strict selection with any remaining
// candidates, ignoring spacing.
func relaxedSelect(starts, selected []float64, countNeeded int) []float64 {
	taken := make(map[float64]bool, len(selected))
	for _, s := range selected {
		taken[s] = true
	}
	for _, start := range starts {
		if len(selected) == countNeeded {
			break
		}
		if !taken[start] {
			selected = append(selected, start)
			taken[start] = true
		}
	}
	return selected
}
