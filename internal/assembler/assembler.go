package assembler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"reelforge/internal/config"
	"reelforge/internal/encoder"
	"reelforge/internal/filtergraph"
	"reelforge/internal/logging"
	"reelforge/internal/media/ffmpeg"
	"reelforge/internal/media/ffprobe"
	"reelforge/internal/motion"
	"reelforge/internal/overlay"
	"reelforge/internal/preflight"
	"reelforge/internal/reframe"
	"reelforge/internal/segments"
	"reelforge/internal/services"
)

// durationTolerance is the acceptable drift between the planned montage
// length and what the output actually measures.
const durationTolerance = 0.5

// spareCandidates is how many extra segment candidates each source is asked
// for, so a failed extraction can move to an alternate window.
const spareCandidates = 2

// Assembler drives a montage build end to end: preflight, workspace,
// segment extraction, concatenation, compositing, and verification.
type Assembler struct {
	cfg       *config.Config
	runner    *ffmpeg.Runner
	inspector *ffprobe.Inspector
	selector  *segments.Selector
	motion    *motion.Synthesizer
	overlay   *overlay.Planner
	profile   encoder.Profile
	rng       *rand.Rand
	logger    *slog.Logger
}

// Option adjusts assembler construction.
type Option func(*Assembler)

// WithFFmpegExecutor injects the executor used for every external tool
// invocation. Tests script it.
func WithFFmpegExecutor(exec ffmpeg.Executor) Option {
	return func(a *Assembler) {
		a.runner = ffmpeg.New(a.cfg.Tools.FFmpeg, ffmpeg.WithExecutor(exec))
	}
}

// WithFFprobeExecutor injects the executor used for media inspection.
func WithFFprobeExecutor(exec ffprobe.Executor) Option {
	return func(a *Assembler) {
		a.inspector = ffprobe.New(a.cfg.Tools.FFprobe, ffprobe.WithExecutor(exec))
	}
}

// WithRand fixes the random source so segment choices and pan directions
// are reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(a *Assembler) {
		if rng != nil {
			a.rng = rng
		}
	}
}

// WithEncoderProfile overrides the probed encoder profile.
func WithEncoderProfile(profile encoder.Profile) Option {
	return func(a *Assembler) {
		a.profile = profile
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New builds an assembler from configuration. The encoder profile is probed
// once here, not per run.
func New(cfg *config.Config, opts ...Option) *Assembler {
	a := &Assembler{
		cfg:     cfg,
		runner:  ffmpeg.New(cfg.Tools.FFmpeg),
		profile: encoder.NewProber().Probe(),
		rng:     rand.New(rand.NewSource(rand.Int63())),
		logger:  logging.NewNop(),
	}
	a.inspector = ffprobe.New(cfg.Tools.FFprobe)
	for _, opt := range opts {
		opt(a)
	}
	a.selector = segments.New(a.runner,
		segments.WithRand(a.rng),
		segments.WithWindowSeconds(cfg.Montage.EnergyWindowSecs),
		segments.WithLogger(a.logger))
	a.motion = motion.New(a.runner,
		motion.WithFPS(cfg.Montage.FPS),
		motion.WithPanFraction(cfg.Montage.PanDistance),
		motion.WithLogger(a.logger))
	a.overlay = overlay.New(
		overlay.WithMarginFraction(cfg.Overlay.MarginFraction),
		overlay.WithMaxLines(cfg.Overlay.MaxLines),
		overlay.WithFadeSeconds(cfg.Overlay.FadeSeconds),
		overlay.WithGapSeconds(cfg.Overlay.CueGapSeconds),
		overlay.WithLogger(a.logger))
	return a
}

// sourceInfo is one inspected input plus its reframe geometry.
type sourceInfo struct {
	descriptor ffprobe.Descriptor
	plan       reframe.Plan
}

// run is the mutable state of one build attempt.
type run struct {
	state    State
	ws       *Workspace
	segments []string
	expected float64
}

// Assemble builds the montage described by req. A retryable failure gets one
// more attempt in a fresh workspace; if the retry also fails past extraction,
// the single-pass fallback composite reuses that attempt's segment files.
func (a *Assembler) Assemble(ctx context.Context, req Request) (Result, error) {
	plan, err := a.resolve(req)
	if err != nil {
		return Result{}, err
	}
	tempRoot := config.ExpandPath(a.cfg.Paths.TempRoot)
	if err := os.MkdirAll(tempRoot, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "assembler", "preflight",
			fmt.Sprintf("creating temp root %s", tempRoot), err)
	}
	if failed := preflight.Failures(preflight.RunAll(a.cfg, req.Sources)); len(failed) > 0 {
		return Result{}, services.Wrap(services.ErrConfiguration, "assembler", "preflight",
			preflightDetail(failed), nil)
	}
	sources, err := a.inspectSources(ctx, plan)
	if err != nil {
		return Result{}, err
	}

	result, err := a.buildAttempt(ctx, plan, sources, false)
	if err == nil {
		return result, nil
	}
	if !services.Retryable(err) {
		return Result{}, err
	}
	a.logger.Warn("montage build failed, retrying once",
		logging.FieldComponent, "assembler", "error", err.Error())
	return a.buildAttempt(ctx, plan, sources, true)
}

func preflightDetail(failed []preflight.Result) string {
	parts := make([]string, 0, len(failed))
	for _, result := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	return "preflight failed: " + strings.Join(parts, "; ")
}

// inspectSources probes every input once and rejects sources outside the
// usable duration range.
func (a *Assembler) inspectSources(ctx context.Context, plan montagePlan) ([]sourceInfo, error) {
	infos := make([]sourceInfo, 0, len(plan.request.Sources))
	for _, path := range plan.request.Sources {
		descriptor, err := a.inspector.Describe(ctx, path)
		if err != nil {
			return nil, err
		}
		if descriptor.DurationSeconds < minSourceSeconds || descriptor.DurationSeconds > maxSourceSeconds {
			return nil, services.Wrap(services.ErrConfiguration, "assembler", "inspect",
				fmt.Sprintf("source %s runs %.1fs, usable range is %ds to %ds",
					path, descriptor.DurationSeconds, minSourceSeconds, maxSourceSeconds), nil)
		}
		framePlan, err := reframe.Compute(descriptor.Width, descriptor.Height, plan.target, reframe.ModeFill)
		if err != nil {
			return nil, err
		}
		infos = append(infos, sourceInfo{descriptor: descriptor, plan: framePlan})
	}
	return infos, nil
}

// buildAttempt runs the staged pipeline in a fresh workspace. When
// allowFallback is set and a stage past extraction fails retryably, the
// single-pass fallback composite runs against the segment files this attempt
// already extracted, before the workspace is discarded. A failed fallback is
// surfaced alongside the stage error that triggered it.
func (a *Assembler) buildAttempt(ctx context.Context, plan montagePlan, sources []sourceInfo, allowFallback bool) (Result, error) {
	ws, err := NewWorkspace(config.ExpandPath(a.cfg.Paths.TempRoot))
	if err != nil {
		return Result{}, err
	}
	defer ws.Cleanup(a.logger)

	ctx = services.WithRunID(ctx, filepath.Base(ws.Root))
	r := &run{state: StateInit, ws: ws}

	result, err := a.runStages(ctx, plan, sources, r)
	if err == nil {
		return result, nil
	}
	if !allowFallback || !services.Retryable(err) || len(r.segments) == 0 {
		return Result{}, err
	}
	a.logger.Warn("retry failed, attempting single-pass fallback",
		logging.FieldComponent, "assembler", "error", err.Error())
	result, fbErr := a.fallbackBuild(ctx, plan, r)
	if fbErr != nil {
		return Result{}, fmt.Errorf("montage build failed: %w; single-pass fallback failed: %w", err, fbErr)
	}
	result.UsedFallback = true
	return result, nil
}

func (a *Assembler) runStages(ctx context.Context, plan montagePlan, sources []sourceInfo, r *run) (Result, error) {
	if err := a.extractSegments(ctx, plan, sources, r); err != nil {
		return Result{}, err
	}
	if err := a.prependIntro(ctx, plan, r); err != nil {
		return Result{}, err
	}
	concatPath, err := a.concatenate(ctx, r)
	if err != nil {
		return Result{}, err
	}
	compositePath, err := a.composite(ctx, plan, r, concatPath)
	if err != nil {
		return Result{}, err
	}
	if err := a.verify(ctx, r, compositePath); err != nil {
		return Result{}, err
	}
	if err := deliver(compositePath, plan.request.OutputPath); err != nil {
		return Result{}, services.Wrap(services.ErrOutputVerification, "assembler", "deliver",
			fmt.Sprintf("moving output to %s", plan.request.OutputPath), err)
	}
	if err := r.advance(StateDone); err != nil {
		return Result{}, err
	}
	a.logger.Info("montage complete",
		logging.FieldComponent, "assembler",
		"output", plan.request.OutputPath,
		"segments", len(r.segments),
		"duration", r.expected)
	return Result{
		OutputPath:      plan.request.OutputPath,
		DurationSeconds: r.expected,
		SegmentCount:    len(r.segments),
	}, nil
}

// extractSegments selects candidate windows from every source and encodes
// each into a reframed segment clip. A failed extraction degrades from the
// motion chain to the static reframe, then to a spare candidate.
func (a *Assembler) extractSegments(ctx context.Context, plan montagePlan, sources []sourceInfo, r *run) error {
	ctx = services.WithStage(ctx, "extract")
	chosen, spares, err := a.pickCandidates(ctx, plan, sources)
	if err != nil {
		return err
	}

	directions := a.directionSequence(plan, len(chosen))
	for index, pick := range chosen {
		segPath := r.ws.Path(fmt.Sprintf("seg_%03d.mp4", index))
		if err := a.extractOne(ctx, plan, pick, directions[index], segPath); err != nil {
			a.logger.Warn("segment extraction failed, trying spare candidate",
				logging.FieldComponent, "assembler",
				logging.FieldSegment, index,
				"error", err.Error())
			spare, ok := takeSpare(spares, pick.source)
			if !ok {
				return services.Wrap(services.ErrInsufficientSegments, "assembler", "extract",
					fmt.Sprintf("segment %d failed and no spare candidates remain", index), err)
			}
			if err := a.extractOne(ctx, plan, spare, directions[index], segPath); err != nil {
				return services.Wrap(services.ErrInsufficientSegments, "assembler", "extract",
					fmt.Sprintf("segment %d failed on both primary and spare windows", index), err)
			}
			pick = spare
		}
		r.segments = append(r.segments, segPath)
		r.expected += pick.candidate.Duration
	}
	if len(r.segments) < plan.segmentCount {
		return services.Wrap(services.ErrInsufficientSegments, "assembler", "extract",
			fmt.Sprintf("only %d of %d segments extracted", len(r.segments), plan.segmentCount), nil)
	}
	return r.advance(StateSegmentsExtracted)
}

// pick pairs a candidate window with the source it came from.
type pick struct {
	source    int
	candidate segments.Candidate
	plan      reframe.Plan
}

// pickCandidates spreads the segment count across sources round-robin and
// asks the selector for each source's share plus spares.
func (a *Assembler) pickCandidates(ctx context.Context, plan montagePlan, sources []sourceInfo) ([]pick, map[int][]pick, error) {
	shares := make([]int, len(sources))
	for i := 0; i < plan.segmentCount; i++ {
		shares[i%len(sources)]++
	}

	spares := make(map[int][]pick)
	perSource := make([][]pick, len(sources))
	for i, info := range sources {
		if shares[i] == 0 {
			continue
		}
		want := shares[i] + spareCandidates
		picked, err := a.selector.Select(ctx, info.descriptor, want, plan.perSegment)
		if err != nil {
			picked, err = a.selector.Select(ctx, info.descriptor, shares[i], plan.perSegment)
			if err != nil {
				return nil, nil, err
			}
		}
		for j, candidate := range picked {
			p := pick{source: i, candidate: candidate, plan: info.plan}
			if j < shares[i] {
				perSource[i] = append(perSource[i], p)
			} else {
				spares[i] = append(spares[i], p)
			}
		}
	}

	// Interleave sources so adjacent montage segments come from different
	// inputs when more than one is given.
	var chosen []pick
	for len(chosen) < plan.segmentCount {
		progressed := false
		for i := range perSource {
			if len(perSource[i]) == 0 {
				continue
			}
			chosen = append(chosen, perSource[i][0])
			perSource[i] = perSource[i][1:]
			progressed = true
		}
		if !progressed {
			break
		}
	}
	if len(chosen) < plan.segmentCount {
		return nil, nil, services.Wrap(services.ErrInsufficientSegments, "assembler", "select",
			fmt.Sprintf("selected %d of %d segments", len(chosen), plan.segmentCount), nil)
	}
	return chosen[:plan.segmentCount], spares, nil
}

func takeSpare(spares map[int][]pick, source int) (pick, bool) {
	pool := spares[source]
	if len(pool) == 0 {
		// Any source's spare beats failing the run.
		for key, alt := range spares {
			if len(alt) > 0 {
				source, pool = key, alt
				break
			}
		}
	}
	if len(pool) == 0 {
		return pick{}, false
	}
	spare := pool[0]
	spares[source] = pool[1:]
	return spare, true
}

// directionSequence resolves the pan strategy into one direction per segment.
func (a *Assembler) directionSequence(plan montagePlan, count int) []motion.Direction {
	all := motion.Directions()
	directions := make([]motion.Direction, count)
	switch plan.panStrategy {
	case panFixed:
		for i := range directions {
			directions[i] = plan.fixedDirection
		}
	case panRandom:
		for i := range directions {
			directions[i] = all[a.rng.Intn(len(all))]
		}
	default:
		for i := range directions {
			directions[i] = all[i%len(all)]
		}
	}
	return directions
}

// extractOne encodes a single candidate window into a reframed segment.
func (a *Assembler) extractOne(ctx context.Context, plan montagePlan, p pick, direction motion.Direction, outPath string) error {
	var chain filtergraph.Chain
	if plan.panStrategy == panNone {
		chain = p.plan.Chain()
	} else {
		var err error
		chain, err = a.motion.Build(ctx, p.plan, direction, p.candidate.Duration, plan.easing)
		if err != nil {
			// Motion is unavailable for this window; the static reframe
			// still yields a usable segment.
			chain = p.plan.Chain()
		}
	}
	if err := a.runSegmentEncode(ctx, p, chain, outPath); err == nil {
		return nil
	}
	static := p.plan.Chain()
	if chain.String() == static.String() {
		return a.runSegmentEncode(ctx, p, static, outPath)
	}
	a.logger.Warn("motion encode failed, retrying with static reframe",
		logging.FieldComponent, "assembler", "source", p.candidate.SourcePath)
	return a.runSegmentEncode(ctx, p, static, outPath)
}

func (a *Assembler) runSegmentEncode(ctx context.Context, p pick, chain filtergraph.Chain, outPath string) error {
	args := []string{
		"-ss", formatSeconds(p.candidate.StartTime),
		"-t", formatSeconds(p.candidate.Duration),
		"-i", p.candidate.SourcePath,
		"-vf", chain.String(),
		"-r", strconv.Itoa(a.cfg.Montage.FPS),
	}
	args = append(args, a.profile.Args()...)
	args = append(args, "-c:a", "aac", "-ar", "48000", "-ac", "2", outPath)
	_, err := a.runner.Run(ctx, args...)
	return err
}

// prependIntro trims the intro clip to the planned length, reframes it to the
// target aspect, and places it ahead of the extracted segments. Intros skip
// the source duration bounds; a two-second sting is normal.
func (a *Assembler) prependIntro(ctx context.Context, plan montagePlan, r *run) error {
	if strings.TrimSpace(plan.request.IntroPath) == "" {
		return nil
	}
	ctx = services.WithStage(ctx, "intro")
	descriptor, err := a.inspector.Describe(ctx, plan.request.IntroPath)
	if err != nil {
		return err
	}
	framePlan, err := reframe.Compute(descriptor.Width, descriptor.Height, plan.target, reframe.ModeFill)
	if err != nil {
		return err
	}
	trim := math.Min(plan.introSeconds, descriptor.DurationSeconds)
	introPath := r.ws.Path("intro.mp4")
	args := []string{
		"-t", formatSeconds(trim),
		"-i", plan.request.IntroPath,
		"-vf", framePlan.Chain().String(),
		"-r", strconv.Itoa(a.cfg.Montage.FPS),
	}
	args = append(args, a.profile.Args()...)
	args = append(args, "-c:a", "aac", "-ar", "48000", "-ac", "2", introPath)
	if _, err := a.runner.Run(ctx, args...); err != nil {
		return err
	}
	r.segments = append([]string{introPath}, r.segments...)
	r.expected += trim
	return nil
}

// concatenate joins the extracted segments. The stream-copy demuxer path is
// tried first; when the tool rejects it the segments are re-encoded through
// the same list.
func (a *Assembler) concatenate(ctx context.Context, r *run) (string, error) {
	ctx = services.WithStage(ctx, "concat")
	listPath := r.ws.Path("segments.txt")
	var list strings.Builder
	for _, segment := range r.segments {
		fmt.Fprintf(&list, "file '%s'\n", strings.ReplaceAll(segment, "'", `'\''`))
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return "", services.Wrap(services.ErrCompositeFailed, "assembler", "concat",
			"writing segment list", err)
	}

	outPath := r.ws.Path("concat.mp4")
	_, err := a.runner.Run(ctx, "-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", outPath)
	if err != nil {
		a.logger.Warn("stream-copy concat rejected, re-encoding",
			logging.FieldComponent, "assembler", "error", err.Error())
		outPath = r.ws.Path("concat_reencoded.mp4")
		args := []string{"-f", "concat", "-safe", "0", "-i", listPath}
		args = append(args, a.profile.Args()...)
		// Segment joints can carry timestamp gaps; resample so the audio
		// track stays continuous through the re-encode.
		args = append(args, "-af", "aresample=async=1:first_pts=0",
			"-c:a", "aac", "-ar", "48000", "-ac", "2", outPath)
		if _, err := a.runner.Run(ctx, args...); err != nil {
			return "", err
		}
	}
	if err := r.advance(StateConcatenated); err != nil {
		return "", err
	}
	return outPath, nil
}

// planCues lays out the caption sequence followed by the repeated handle.
func (a *Assembler) planCues(plan montagePlan, totalSeconds float64) ([]overlay.Cue, error) {
	var cues []overlay.Cue
	if len(plan.request.Texts) > 0 {
		sequence, err := a.overlay.PlanSequence(plan.request.Texts, plan.style, plan.target,
			plan.cueSeconds, totalSeconds, plan.textMotion)
		if err != nil {
			return nil, err
		}
		cues = append(cues, sequence...)
	}
	if strings.TrimSpace(plan.request.Handle) != "" {
		repeats, err := a.overlay.PlanRepeats(plan.request.Handle, plan.style, plan.target,
			totalSeconds, plan.textMotion)
		if err != nil {
			return nil, err
		}
		cues = append(cues, repeats...)
	}
	return cues, nil
}

// composite burns the text cues onto the concatenated montage and mixes in
// the audio bed when one is given. With nothing to apply the concat output
// passes through untouched.
func (a *Assembler) composite(ctx context.Context, plan montagePlan, r *run, concatPath string) (string, error) {
	ctx = services.WithStage(ctx, "composite")
	cues, err := a.planCues(plan, r.expected)
	if err != nil {
		return "", err
	}
	textChain := overlay.SequenceChain(cues, plan.target)

	if textChain.Empty() && plan.request.AudioPath == "" {
		if err := r.advance(StateComposited); err != nil {
			return "", err
		}
		return concatPath, nil
	}

	outPath := r.ws.Path("composited.mp4")
	var args []string
	switch {
	case plan.request.AudioPath != "":
		videoFilter := "[0:v]null[v]"
		if !textChain.Empty() {
			videoFilter = "[0:v]" + textChain.String() + "[v]"
		}
		// The bed fades in so the montage does not open at full blast.
		graph := fmt.Sprintf("%s;[1:a]volume=%.2f,afade=t=in:d=1[bed];[0:a][bed]amix=inputs=2:duration=first[a]",
			videoFilter, plan.audioVolume)
		args = []string{"-i", concatPath, "-i", plan.request.AudioPath,
			"-filter_complex", graph, "-map", "[v]", "-map", "[a]"}
	default:
		args = []string{"-i", concatPath, "-vf", textChain.String()}
	}
	args = append(args, a.profile.Args()...)
	args = append(args, "-c:a", "aac", outPath)
	if _, err := a.runner.Run(ctx, args...); err != nil {
		return "", services.Wrap(services.ErrCompositeFailed, "assembler", "composite",
			"applying overlays", err)
	}
	if err := r.advance(StateComposited); err != nil {
		return "", err
	}
	return outPath, nil
}

// verify confirms the output exists, is non-empty, and measures within
// tolerance of the planned montage length.
func (a *Assembler) verify(ctx context.Context, r *run, path string) error {
	ctx = services.WithStage(ctx, "verify")
	if err := a.verifyOutput(ctx, path, r.expected); err != nil {
		return err
	}
	return r.advance(StateVerified)
}

func (a *Assembler) verifyOutput(ctx context.Context, path string, expected float64) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrOutputVerification, "assembler", "verify",
			fmt.Sprintf("output %s missing", path), err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrOutputVerification, "assembler", "verify",
			fmt.Sprintf("output %s is empty", path), nil)
	}
	measured, err := a.inspector.Duration(ctx, path)
	if err != nil {
		return services.Wrap(services.ErrOutputVerification, "assembler", "verify",
			"measuring output duration", err)
	}
	if math.Abs(measured-expected) > durationTolerance {
		return services.Wrap(services.ErrOutputVerification, "assembler", "verify",
			fmt.Sprintf("output runs %.2fs, planned %.2fs", measured, expected), nil)
	}
	return nil
}

// deliver moves the finished montage to its declared destination, falling
// back to a copy when the workspace sits on a different filesystem.
func deliver(from, to string) error {
	if dir := filepath.Dir(to); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.Rename(from, to); err == nil {
		return nil
	}
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(to)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(to)
		return err
	}
	return dst.Close()
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
