package assembler

import (
	"context"
	"fmt"
	"strings"

	"reelforge/internal/logging"
	"reelforge/internal/overlay"
	"reelforge/internal/services"
)

// fallbackBuild composes the montage in a single external tool invocation
// from the segment files the failed attempt already extracted: every segment
// is an input, the filter graph scales and concatenates them, and the text
// cues draw on the joined stream. The result is verified inside the run
// workspace and only then moved to the declared output path.
func (a *Assembler) fallbackBuild(ctx context.Context, plan montagePlan, r *run) (Result, error) {
	ctx = services.WithStage(ctx, "fallback")
	args, err := a.fallbackArgs(plan, r)
	if err != nil {
		return Result{}, err
	}

	outPath := r.ws.Path("fallback.mp4")
	args = append(args, outPath)
	if _, err := a.runner.Run(ctx, args...); err != nil {
		return Result{}, services.Wrap(services.ErrCompositeFailed, "assembler", "fallback",
			"single-pass composite failed", err)
	}
	if err := a.verifyOutput(ctx, outPath, r.expected); err != nil {
		return Result{}, err
	}
	if err := deliver(outPath, plan.request.OutputPath); err != nil {
		return Result{}, services.Wrap(services.ErrOutputVerification, "assembler", "fallback",
			fmt.Sprintf("moving output to %s", plan.request.OutputPath), err)
	}
	a.logger.Info("fallback montage complete",
		logging.FieldComponent, "assembler",
		"output", plan.request.OutputPath,
		"segments", len(r.segments))
	return Result{
		OutputPath:      plan.request.OutputPath,
		DurationSeconds: r.expected,
		SegmentCount:    len(r.segments),
	}, nil
}

// fallbackArgs builds the multi-input invocation over the extracted segment
// files: a graph that scales each to the target geometry then concatenates,
// with the overlay chain on the joined video.
func (a *Assembler) fallbackArgs(plan montagePlan, r *run) ([]string, error) {
	cues, err := a.planCues(plan, r.expected)
	if err != nil {
		return nil, err
	}

	var args []string
	for _, path := range r.segments {
		args = append(args, "-i", path)
	}

	var graph strings.Builder
	for i := range r.segments {
		fmt.Fprintf(&graph, "[%d:v]scale=%d:%d[v%d];", i, plan.target.Width, plan.target.Height, i)
		fmt.Fprintf(&graph, "[%d:a]anull[a%d];", i, i)
	}
	for i := range r.segments {
		fmt.Fprintf(&graph, "[v%d][a%d]", i, i)
	}
	fmt.Fprintf(&graph, "concat=n=%d:v=1:a=1[vc][a]", len(r.segments))

	videoLabel := "[vc]"
	textChain := overlay.SequenceChain(cues, plan.target)
	if !textChain.Empty() {
		fmt.Fprintf(&graph, ";[vc]%s[vo]", textChain.String())
		videoLabel = "[vo]"
	}

	args = append(args, "-filter_complex", graph.String(), "-map", videoLabel, "-map", "[a]")
	args = append(args, a.profile.Args()...)
	args = append(args, "-c:a", "aac")
	return args, nil
}
