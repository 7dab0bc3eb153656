package ffmpeg

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"reelforge/internal/logging"
	"reelforge/internal/services"
)

// Executor abstracts processing-tool execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (diagnostics string, err error)
}

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithLogger routes invocation diagnostics to the provided logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.NewComponentLogger(logger, "ffmpeg")
	}
}

// Runner invokes the external processing tool with an argument list and
// captures its diagnostic stream. Every invocation is a blocking subprocess
// call; the pipeline never runs two invocations concurrently.
type Runner struct {
	binary string
	exec   Executor
	logger *slog.Logger
}

// New constructs a runner for the given processing-tool binary.
func New(binary string, opts ...Option) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	runner := &Runner{binary: binary, exec: commandExecutor{}, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Binary reports the configured binary name.
func (r *Runner) Binary() string {
	return r.binary
}

// Run executes the tool with "-y -hide_banner" prepended. The diagnostic
// stream is returned in full on both success and failure so callers can parse
// analysis filters (which report on stderr) or log failures.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-y", "-hide_banner"}, args...)
	diagnostics, err := r.exec.Run(ctx, r.binary, full)
	if err != nil {
		r.logger.Debug("tool invocation failed",
			slog.String("args", strings.Join(args, " ")),
			slog.String("diagnostics", tail(diagnostics, 2000)))
		return diagnostics, services.Wrap(services.ErrExternalTool, "ffmpeg", "run",
			tail(diagnostics, 400), err)
	}
	return diagnostics, nil
}

// tail returns at most n trailing bytes of s; tool diagnostics put the actual
// failure reason at the end.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}
