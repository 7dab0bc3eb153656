package overlay

import (
	"fmt"

	"reelforge/internal/filtergraph"
	"reelforge/internal/reframe"
)

// Line spacing as a fraction of font size.
const lineSpacingRatio = 1.2

// Sweep rates for bouncing cues, in pixels per second of montage time. The
// axes move at different speeds so the path does not retrace itself.
const (
	bounceSpeedX = 120
	bounceSpeedY = 80
)

// glowLayers defines the stacked passes rendered behind glow styles: each is
// a border width multiplier with a dimmer alpha.
var glowLayers = []struct {
	widthScale float64
	alphaScale float64
}{
	{widthScale: 4, alphaScale: 0.25},
	{widthScale: 2.5, alphaScale: 0.5},
}

// CueChain renders a planned cue as a sequence of drawtext filters, one per
// wrapped line, with glow passes stacked underneath when the style asks for
// them. Text content always passes through filtergraph.Escape.
func CueChain(cue Cue, target reframe.Target) filtergraph.Chain {
	chain := filtergraph.NewChain()
	lineHeight := int(float64(cue.FontSize) * lineSpacingRatio)
	blockHeight := lineHeight * len(cue.Lines)
	baseY := int(float64(target.Height)*cue.Style.VerticalFraction) - blockHeight/2
	if baseY < 0 {
		baseY = 0
	}
	if baseY+blockHeight > target.Height {
		baseY = target.Height - blockHeight
	}
	for index, line := range cue.Lines {
		y := baseY + index*lineHeight
		if cue.Style.Glow {
			for _, layer := range glowLayers {
				chain = chain.Append(drawtextNode(cue, target, line, y,
					int(float64(cue.Style.BorderWidth)*layer.widthScale), layer.alphaScale))
			}
		}
		chain = chain.Append(drawtextNode(cue, target, line, y, cue.Style.BorderWidth, 1.0))
	}
	return chain
}

// SequenceChain concatenates the filters for every cue in order.
func SequenceChain(cues []Cue, target reframe.Target) filtergraph.Chain {
	chain := filtergraph.NewChain()
	for _, cue := range cues {
		chain = chain.Concat(CueChain(cue, target))
	}
	return chain
}

func drawtextNode(cue Cue, target reframe.Target, line string, y int, borderWidth int, alphaScale float64) filtergraph.Node {
	args := []filtergraph.Arg{
		filtergraph.Expr("text", filtergraph.Escape(line)),
		filtergraph.Param("fontsize", fmt.Sprintf("%d", cue.FontSize)),
		filtergraph.Param("fontcolor", cue.Style.FontColor),
		filtergraph.Param("bordercolor", cue.Style.BorderColor),
		filtergraph.Param("borderw", fmt.Sprintf("%d", borderWidth)),
	}
	switch cue.Motion {
	case MotionBounce:
		args = append(args,
			filtergraph.Expr("x", fmt.Sprintf("mod(t*%d,%d-text_w)", bounceSpeedX, target.Width)),
			filtergraph.Expr("y", fmt.Sprintf("mod(t*%d,%d-text_h)", bounceSpeedY, target.Height)),
		)
	default:
		args = append(args,
			filtergraph.Expr("x", "(w-text_w)/2"),
			filtergraph.Param("y", fmt.Sprintf("%d", y)),
		)
	}
	args = append(args,
		filtergraph.Expr("enable", fmt.Sprintf("between(t,%.3f,%.3f)", cue.StartTime, cue.EndTime)),
		filtergraph.Expr("alpha", alphaExpression(cue, alphaScale)),
	)
	return filtergraph.Node{Name: "drawtext", Args: args}
}

// alphaExpression ramps opacity over the cue's fade windows. Outside the
// fades the cue holds at the layer's full alpha.
func alphaExpression(cue Cue, scale float64) string {
	if cue.FadeSeconds <= 0 {
		return fmt.Sprintf("%.3f", scale)
	}
	return fmt.Sprintf("%.3f*if(lt(t,%.3f),(t-%.3f)/%.3f,if(gt(t,%.3f),(%.3f-t)/%.3f,1))",
		scale,
		cue.StartTime+cue.FadeSeconds, cue.StartTime, cue.FadeSeconds,
		cue.EndTime-cue.FadeSeconds, cue.EndTime, cue.FadeSeconds)
}
