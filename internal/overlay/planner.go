package overlay

import (
	"fmt"
	"log/slog"
	"strings"

	"reelforge/internal/logging"
	"reelforge/internal/reframe"
	"reelforge/internal/services"
)

// Motion selects how a cue moves while on screen.
type Motion int

const (
	// MotionNone pins the cue at the style's anchor position.
	MotionNone Motion = iota
	// MotionBounce drifts the cue across the frame on a repeating sweep.
	MotionBounce
)

var motionNames = map[Motion]string{
	MotionNone:   "none",
	MotionBounce: "bounce",
}

func (m Motion) String() string {
	if name, ok := motionNames[m]; ok {
		return name
	}
	return "none"
}

// ParseMotion resolves a motion name from configuration or CLI input.
func ParseMotion(name string) (Motion, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "static":
		return MotionNone, nil
	case "bounce", "bouncing":
		return MotionBounce, nil
	}
	return MotionNone, services.Wrap(services.ErrConfiguration, "overlay", "motion",
		fmt.Sprintf("unknown text motion %q (supported: none, bounce)", name), nil)
}

// Cue is one planned on-screen text: the wrapped lines, final font size, and
// the window it occupies on the montage timeline.
type Cue struct {
	Text        string
	Style       Style
	FontSize    int
	Lines       []string
	StartTime   float64
	EndTime     float64
	FadeSeconds float64
	Motion      Motion
}

// Duration reports how long the cue stays on screen.
func (c Cue) Duration() float64 {
	return c.EndTime - c.StartTime
}

// Planner lays text cues onto a montage timeline.
type Planner struct {
	marginFraction float64
	maxLines       int
	fadeSeconds    float64
	gapSeconds     float64
	logger         *slog.Logger
}

// Option adjusts planner construction.
type Option func(*Planner)

// WithMarginFraction sets the horizontal margin reserved on each side of the
// frame, as a fraction of target width.
func WithMarginFraction(fraction float64) Option {
	return func(p *Planner) {
		if fraction > 0 && fraction < 0.5 {
			p.marginFraction = fraction
		}
	}
}

// WithMaxLines caps how many wrapped lines a single cue may occupy.
func WithMaxLines(lines int) Option {
	return func(p *Planner) {
		if lines > 0 {
			p.maxLines = lines
		}
	}
}

// WithFadeSeconds sets the fade-in and fade-out length applied to each cue.
func WithFadeSeconds(seconds float64) Option {
	return func(p *Planner) {
		if seconds >= 0 {
			p.fadeSeconds = seconds
		}
	}
}

// WithGapSeconds sets the quiet interval between consecutive cues.
func WithGapSeconds(seconds float64) Option {
	return func(p *Planner) {
		if seconds >= 0 {
			p.gapSeconds = seconds
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New builds a planner with montage defaults.
func New(opts ...Option) *Planner {
	planner := &Planner{
		marginFraction: 0.2,
		maxLines:       3,
		fadeSeconds:    0.5,
		gapSeconds:     2.0,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(planner)
	}
	return planner
}

func (p *Planner) availableWidth(target reframe.Target) int {
	return int(float64(target.Width) * (1 - 2*p.marginFraction))
}

// PlanCue sizes and wraps one phrase for the target frame. The cue starts at
// time zero; sequence layout assigns the real window.
func (p *Planner) PlanCue(text string, style Style, target reframe.Target, displaySeconds float64, motion Motion) (Cue, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Cue{}, services.Wrap(services.ErrConfiguration, "overlay", "plan", "text cue is empty", nil)
	}
	if displaySeconds <= 0 {
		return Cue{}, services.Wrap(services.ErrConfiguration, "overlay", "plan",
			fmt.Sprintf("cue duration %.2fs must be positive", displaySeconds), nil)
	}
	size, lines := fitText(style, trimmed, p.availableWidth(target), p.maxLines)
	fade := p.fadeSeconds
	if fade*2 > displaySeconds {
		fade = displaySeconds / 2
	}
	return Cue{
		Text:        trimmed,
		Style:       style,
		FontSize:    size,
		Lines:       lines,
		StartTime:   0,
		EndTime:     displaySeconds,
		FadeSeconds: fade,
		Motion:      motion,
	}, nil
}

// PlanSequence lays the phrases back to back with the configured gap between
// them. Cues that would start at or past totalSeconds are dropped; the last
// surviving cue is clipped to the montage end.
func (p *Planner) PlanSequence(texts []string, style Style, target reframe.Target, perCueSeconds, totalSeconds float64, motion Motion) ([]Cue, error) {
	var cues []Cue
	cursor := 0.0
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if cursor >= totalSeconds {
			p.logger.Warn("dropping text cue beyond montage end",
				logging.FieldComponent, "overlay", "text", text, "start", cursor)
			continue
		}
		cue, err := p.PlanCue(text, style, target, perCueSeconds, motion)
		if err != nil {
			return nil, err
		}
		cue.StartTime = cursor
		cue.EndTime = cursor + perCueSeconds
		if cue.EndTime > totalSeconds {
			cue.EndTime = totalSeconds
			if fade := cue.FadeSeconds; fade*2 > cue.Duration() {
				cue.FadeSeconds = cue.Duration() / 2
			}
		}
		cues = append(cues, cue)
		cursor = cue.EndTime + p.gapSeconds
	}
	return cues, nil
}

// PlanRepeats spreads repeated displays of one phrase, usually an account
// handle, evenly across the montage. Between three and five showings, scaled
// to the montage length, each held for three seconds.
func (p *Planner) PlanRepeats(text string, style Style, target reframe.Target, totalSeconds float64, motion Motion) ([]Cue, error) {
	const holdSeconds = 3.0
	repeats := int(totalSeconds / 20)
	if repeats < 3 {
		repeats = 3
	}
	if repeats > 5 {
		repeats = 5
	}
	interval := totalSeconds / float64(repeats+1)
	var cues []Cue
	for i := 0; i < repeats; i++ {
		cue, err := p.PlanCue(text, style, target, holdSeconds, motion)
		if err != nil {
			return nil, err
		}
		cue.StartTime = float64(i+1) * interval
		cue.EndTime = cue.StartTime + holdSeconds
		if cue.EndTime > totalSeconds {
			cue.EndTime = totalSeconds
		}
		if cue.Duration() <= 0 {
			continue
		}
		cues = append(cues, cue)
	}
	return cues, nil
}
