package motion

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"reelforge/internal/filtergraph"
	"reelforge/internal/logging"
	"reelforge/internal/media/ffmpeg"
	"reelforge/internal/reframe"
	"reelforge/internal/services"
)

const (
	// Motion shorter than this cannot be perceived and historically broke
	// filter validation.
	minMotionSeconds = 2.0
	// Pan travel is bounded to this fraction of the frame when the caller
	// does not constrain it further.
	maxPanFraction = 0.2
	minPanFraction = 0.1
)

// Synthesizer builds parametrized pan/zoom filter chains on top of a base
// reframe and validates them against the external tool before they are
// trusted.
type Synthesizer struct {
	runner      *ffmpeg.Runner
	fps         int
	panFraction float64
	logger      *slog.Logger
}

// Option configures the synthesizer.
type Option func(*Synthesizer)

// WithFPS overrides the default 30 fps frame counting.
func WithFPS(fps int) Option {
	return func(s *Synthesizer) {
		if fps > 0 {
			s.fps = fps
		}
	}
}

// WithPanFraction bounds pan travel to the given fraction of the frame
// dimension, clamped to [0.1, 0.2].
func WithPanFraction(fraction float64) Option {
	return func(s *Synthesizer) {
		s.panFraction = math.Min(math.Max(fraction, minPanFraction), maxPanFraction)
	}
}

// WithLogger routes synthesis logs to the provided logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = logging.NewComponentLogger(logger, "motion")
	}
}

// New constructs a synthesizer that validates fragments through runner.
func New(runner *ffmpeg.Runner, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		runner:      runner,
		fps:         30,
		panFraction: maxPanFraction,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build synthesizes a validated motion chain for one segment. Segments under
// two seconds, and pans with no crop margin to travel across, return the base
// reframe unchanged. When the synthesized fragment fails validation the
// expression-free base is revalidated; if even that fails the caller receives
// a motion-unavailable error and must fall back to the static reframe.
func (s *Synthesizer) Build(ctx context.Context, base reframe.Plan, direction Direction, durationSeconds float64, easing Easing) (filtergraph.Chain, error) {
	static := base.Chain()
	if durationSeconds < minMotionSeconds {
		return static, nil
	}

	frameCount := int(math.Round(durationSeconds * float64(s.fps)))
	var chain filtergraph.Chain
	if direction.IsZoom() {
		chain = s.zoomChain(base, direction, frameCount, easing)
	} else {
		var ok bool
		chain, ok = s.panChain(base, direction, frameCount, easing)
		if !ok {
			return static, nil
		}
	}

	if err := s.Validate(ctx, base.Target, chain); err == nil {
		return chain, nil
	} else {
		s.logger.Warn("motion fragment failed validation, retrying without expressions",
			slog.String("direction", direction.String()),
			slog.String("error", err.Error()))
	}

	if err := s.Validate(ctx, base.Target, static); err != nil {
		return filtergraph.Chain{}, services.Wrap(services.ErrMotionUnavailable, "motion", "validate",
			fmt.Sprintf("static fallback rejected for direction %s", direction), err)
	}
	return static, nil
}

// panChain replaces the static crop offsets with per-frame expressions that
// slide the crop window across the scaled frame.
func (s *Synthesizer) panChain(base reframe.Plan, direction Direction, frameCount int, easing Easing) (filtergraph.Chain, bool) {
	marginX, marginY := base.CropMargins()

	travelX := min(marginX, int(s.panFraction*float64(base.Target.Width)))
	travelY := min(marginY, int(s.panFraction*float64(base.Target.Height)))

	progress := fmt.Sprintf("(n/%d)", frameCount)
	eased := easing.Expression(progress)

	xExpr := strconv.Itoa(base.OffsetX)
	yExpr := strconv.Itoa(base.OffsetY)
	switch direction {
	case LeftToRight:
		if travelX == 0 {
			return filtergraph.Chain{}, false
		}
		start := clampOffset(base.OffsetX-travelX/2, marginX)
		xExpr = travelExpr(start, min(start+travelX, marginX), eased)
	case RightToLeft:
		if travelX == 0 {
			return filtergraph.Chain{}, false
		}
		start := min(base.OffsetX+travelX/2, marginX)
		xExpr = travelExpr(start, clampOffset(start-travelX, marginX), eased)
	case TopToBottom:
		if travelY == 0 {
			return filtergraph.Chain{}, false
		}
		start := clampOffset(base.OffsetY-travelY/2, marginY)
		yExpr = travelExpr(start, min(start+travelY, marginY), eased)
	case BottomToTop:
		if travelY == 0 {
			return filtergraph.Chain{}, false
		}
		start := min(base.OffsetY+travelY/2, marginY)
		yExpr = travelExpr(start, clampOffset(start-travelY, marginY), eased)
	}

	scaleNode := filtergraph.NewNode("scale",
		filtergraph.Positional(strconv.Itoa(base.ScaledWidth)),
		filtergraph.Positional(strconv.Itoa(base.ScaledHeight)),
	)
	cropNode := filtergraph.NewNode("crop",
		filtergraph.Positional(strconv.Itoa(base.Target.Width)),
		filtergraph.Positional(strconv.Itoa(base.Target.Height)),
		filtergraph.Expr("x", xExpr),
		filtergraph.Expr("y", yExpr),
	)
	return filtergraph.NewChain(scaleNode, cropNode), true
}

// zoomChain interpolates a scale factor per frame, recentering the crop
// origin so the zoom stays anchored on the frame center.
func (s *Synthesizer) zoomChain(base reframe.Plan, direction Direction, frameCount int, easing Easing) filtergraph.Chain {
	amount := s.panFraction

	progress := fmt.Sprintf("(on/%d)", frameCount)
	eased := easing.Expression(progress)

	var zExpr string
	if direction == ZoomIn {
		zExpr = fmt.Sprintf("1+%.3f*%s", amount, eased)
	} else {
		zExpr = fmt.Sprintf("1+%.3f*(1-%s)", amount, eased)
	}

	zoomNode := filtergraph.NewNode("zoompan",
		filtergraph.Expr("z", zExpr),
		filtergraph.Param("d", "1"),
		filtergraph.Expr("x", "iw/2-(iw/zoom/2)"),
		filtergraph.Expr("y", "ih/2-(ih/zoom/2)"),
		filtergraph.Param("s", fmt.Sprintf("%dx%d", base.Target.Width, base.Target.Height)),
		filtergraph.Param("fps", strconv.Itoa(s.fps)),
	)
	return base.Chain().Append(zoomNode)
}

// Validate dry-runs a chain against a two-second solid-color test clip. A
// fragment is never trusted until the external tool has accepted it once.
func (s *Synthesizer) Validate(ctx context.Context, target reframe.Target, chain filtergraph.Chain) error {
	if chain.Empty() {
		return services.Wrap(services.ErrMotionUnavailable, "motion", "validate", "empty filter chain", nil)
	}
	testSource := fmt.Sprintf("color=c=black:s=%dx%d:d=2:r=%d", target.Width, target.Height, s.fps)
	_, err := s.runner.Run(ctx,
		"-f", "lavfi",
		"-i", testSource,
		"-vf", chain.String(),
		"-frames:v", strconv.Itoa(s.fps),
		"-f", "null", "-",
	)
	return err
}

func travelExpr(start, end int, eased string) string {
	return fmt.Sprintf("%d+(%d)*%s", start, end-start, eased)
}

func clampOffset(value, limit int) int {
	if value < 0 {
		return 0
	}
	if value > limit {
		return limit
	}
	return value
}
