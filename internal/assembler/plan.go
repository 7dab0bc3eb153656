package assembler

import (
	"fmt"
	"strings"

	"reelforge/internal/motion"
	"reelforge/internal/overlay"
	"reelforge/internal/reframe"
	"reelforge/internal/services"
)

// Source duration bounds. Anything shorter has nothing worth sampling and
// anything longer is almost certainly the wrong file.
const (
	minSourceSeconds = 30
	maxSourceSeconds = 3600
)

// defaultIntroSeconds is how much of the intro clip plays when the caller
// does not say otherwise.
const defaultIntroSeconds = 5.0

// Request describes one montage build as the caller asks for it.
type Request struct {
	Sources         []string
	OutputPath      string
	AspectName      string
	Tier            string
	DurationSeconds float64
	Texts           []string
	Handle          string
	StyleName       string
	TextMotionName  string
	CueSeconds      float64
	PanStrategy     string
	PanDirection    string
	EasingName      string
	IntroPath       string
	IntroSeconds    float64
	AudioPath       string
	AudioVolume     float64
	Seed            int64
}

// Result reports a completed montage build.
type Result struct {
	OutputPath      string
	DurationSeconds float64
	SegmentCount    int
	UsedFallback    bool
}

// montagePlan is the resolved form of a request: every name looked up,
// every count and duration computed.
type montagePlan struct {
	request        Request
	target         reframe.Target
	style          overlay.Style
	textMotion     overlay.Motion
	segmentCount   int
	perSegment     float64
	cueSeconds     float64
	panStrategy    panStrategy
	fixedDirection motion.Direction
	easing         motion.Easing
	audioVolume    float64
	introSeconds   float64
}

type panStrategy string

const (
	panSequence panStrategy = "sequence"
	panRandom   panStrategy = "random"
	panFixed    panStrategy = "fixed"
	panNone     panStrategy = "none"
)

func parsePanStrategy(name string) (panStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sequence":
		return panSequence, nil
	case "random":
		return panRandom, nil
	case "fixed":
		return panFixed, nil
	case "none", "off":
		return panNone, nil
	}
	return panSequence, services.Wrap(services.ErrConfiguration, "assembler", "plan",
		fmt.Sprintf("unknown pan strategy %q (supported: sequence, random, fixed, none)", name), nil)
}

func (a *Assembler) resolve(req Request) (montagePlan, error) {
	if len(req.Sources) == 0 {
		return montagePlan{}, services.Wrap(services.ErrConfiguration, "assembler", "plan",
			"at least one source is required", nil)
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return montagePlan{}, services.Wrap(services.ErrConfiguration, "assembler", "plan",
			"output path is required", nil)
	}
	if req.DurationSeconds <= 0 {
		return montagePlan{}, services.Wrap(services.ErrConfiguration, "assembler", "plan",
			fmt.Sprintf("montage duration %.1fs must be positive", req.DurationSeconds), nil)
	}

	target, err := reframe.LookupTarget(req.AspectName)
	if err != nil {
		return montagePlan{}, err
	}
	style, err := overlay.LookupStyle(req.StyleName)
	if err != nil {
		return montagePlan{}, err
	}
	textMotion, err := overlay.ParseMotion(req.TextMotionName)
	if err != nil {
		return montagePlan{}, err
	}
	strategy, err := parsePanStrategy(req.PanStrategy)
	if err != nil {
		return montagePlan{}, err
	}
	var fixed motion.Direction
	if strategy == panFixed {
		fixed, err = motion.ParseDirection(req.PanDirection)
		if err != nil {
			return montagePlan{}, err
		}
	}
	easing := motion.EasingEaseInOut
	if strings.TrimSpace(req.EasingName) != "" {
		easing, err = motion.ParseEasing(req.EasingName)
		if err != nil {
			return montagePlan{}, err
		}
	}
	if req.AudioVolume < 0 {
		return montagePlan{}, services.Wrap(services.ErrConfiguration, "assembler", "plan",
			fmt.Sprintf("audio volume %.2f must not be negative", req.AudioVolume), nil)
	}
	volume := req.AudioVolume
	if volume == 0 {
		volume = 1.0
	}
	if req.IntroSeconds < 0 {
		return montagePlan{}, services.Wrap(services.ErrConfiguration, "assembler", "plan",
			fmt.Sprintf("intro duration %.1fs must not be negative", req.IntroSeconds), nil)
	}
	introSeconds := req.IntroSeconds
	if introSeconds == 0 {
		introSeconds = defaultIntroSeconds
	}

	count := a.cfg.SegmentsForTier(req.Tier)
	if count <= 0 {
		return montagePlan{}, services.Wrap(services.ErrConfiguration, "assembler", "plan",
			fmt.Sprintf("unknown segment tier %q (supported: few, some, lots)", req.Tier), nil)
	}

	perSegment := req.DurationSeconds / float64(count)
	cueSeconds := req.CueSeconds
	if cueSeconds <= 0 {
		cueSeconds = perSegment
	}

	return montagePlan{
		request:        req,
		target:         target,
		style:          style,
		textMotion:     textMotion,
		segmentCount:   count,
		perSegment:     perSegment,
		cueSeconds:     cueSeconds,
		panStrategy:    strategy,
		fixedDirection: fixed,
		easing:         easing,
		audioVolume:    volume,
		introSeconds:   introSeconds,
	}, nil
}
