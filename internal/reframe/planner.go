package reframe

import (
	"math"
	"strconv"

	"reelforge/internal/filtergraph"
	"reelforge/internal/services"
)

// Mode selects between cropping the overflow (fill) and padding the
// shortfall (fit).
type Mode int

const (
	// ModeFill scales so the source covers the target, then center-crops.
	ModeFill Mode = iota
	// ModeFitPad scales so the source fits inside the target, then pads.
	ModeFitPad
)

// Plan is the resolved scale and crop/pad geometry mapping a source frame
// onto a target. It is consumed verbatim as the base transform by the motion
// synthesizer.
type Plan struct {
	Target       Target
	Mode         Mode
	ScaledWidth  int
	ScaledHeight int
	OffsetX      int
	OffsetY      int
}

// Compute derives the reframe plan for a source geometry. Branching depends
// only on the numeric source and target ratios, never on the target's name.
func Compute(srcWidth, srcHeight int, target Target, mode Mode) (Plan, error) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return Plan{}, services.Wrap(services.ErrMediaUnreadable, "reframe", "compute",
			"source dimensions must be positive", nil)
	}

	sx := float64(target.Width) / float64(srcWidth)
	sy := float64(target.Height) / float64(srcHeight)

	var scale float64
	if mode == ModeFill {
		scale = math.Max(sx, sy)
	} else {
		scale = math.Min(sx, sy)
	}

	scaledWidth := int(math.Round(float64(srcWidth) * scale))
	scaledHeight := int(math.Round(float64(srcHeight) * scale))

	// Rounding may land one pixel short of the target on the covering axis;
	// clamp so the crop window always fits.
	if mode == ModeFill {
		scaledWidth = max(scaledWidth, target.Width)
		scaledHeight = max(scaledHeight, target.Height)
	} else {
		scaledWidth = min(scaledWidth, target.Width)
		scaledHeight = min(scaledHeight, target.Height)
	}

	plan := Plan{
		Target:       target,
		Mode:         mode,
		ScaledWidth:  scaledWidth,
		ScaledHeight: scaledHeight,
	}
	if mode == ModeFill {
		plan.OffsetX = max((scaledWidth-target.Width)/2, 0)
		plan.OffsetY = max((scaledHeight-target.Height)/2, 0)
	} else {
		plan.OffsetX = max((target.Width-scaledWidth)/2, 0)
		plan.OffsetY = max((target.Height-scaledHeight)/2, 0)
	}
	return plan, nil
}

// Chain serializes the plan as the base filter transform.
func (p Plan) Chain() filtergraph.Chain {
	scaleNode := filtergraph.NewNode("scale",
		filtergraph.Positional(strconv.Itoa(p.ScaledWidth)),
		filtergraph.Positional(strconv.Itoa(p.ScaledHeight)),
	)
	if p.Mode == ModeFill {
		return filtergraph.NewChain(scaleNode, filtergraph.NewNode("crop",
			filtergraph.Positional(strconv.Itoa(p.Target.Width)),
			filtergraph.Positional(strconv.Itoa(p.Target.Height)),
			filtergraph.Positional(strconv.Itoa(p.OffsetX)),
			filtergraph.Positional(strconv.Itoa(p.OffsetY)),
		))
	}
	return filtergraph.NewChain(scaleNode, filtergraph.NewNode("pad",
		filtergraph.Positional(strconv.Itoa(p.Target.Width)),
		filtergraph.Positional(strconv.Itoa(p.Target.Height)),
		filtergraph.Positional(strconv.Itoa(p.OffsetX)),
		filtergraph.Positional(strconv.Itoa(p.OffsetY)),
	))
}

// CropMargins reports how much scaled material extends past the crop window
// on each axis, the budget available to pan across.
func (p Plan) CropMargins() (x, y int) {
	if p.Mode != ModeFill {
		return 0, 0
	}
	return p.ScaledWidth - p.Target.Width, p.ScaledHeight - p.Target.Height
}
