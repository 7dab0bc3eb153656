package ffprobe

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"reelforge/internal/services"
)

// Descriptor captures the media properties the planner and selector need.
// It is derived on demand and never cached across calls.
type Descriptor struct {
	Path            string
	DurationSeconds float64
	Width           int
	Height          int
}

// Executor abstracts query-tool execution for testability.
type Executor interface {
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the inspector.
type Option func(*Inspector)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(i *Inspector) {
		if exec != nil {
			i.exec = exec
		}
	}
}

// Inspector queries duration and dimensions through the companion query tool.
type Inspector struct {
	binary string
	exec   Executor
}

// New constructs an inspector for the given query-tool binary.
func New(binary string, opts ...Option) *Inspector {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	inspector := &Inspector{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(inspector)
	}
	return inspector
}

// Duration returns the container duration in seconds.
func (i *Inspector) Duration(ctx context.Context, path string) (float64, error) {
	output, err := i.query(ctx, path,
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
	)
	if err != nil {
		return 0, err
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil || duration <= 0 {
		return 0, services.Wrap(services.ErrMediaUnreadable, "inspector", "duration",
			fmt.Sprintf("non-numeric duration %q for %s", strings.TrimSpace(output), path), nil)
	}
	return duration, nil
}

// Dimensions returns the width and height of the first video stream.
func (i *Inspector) Dimensions(ctx context.Context, path string) (int, int, error) {
	output, err := i.query(ctx, path,
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
	)
	if err != nil {
		return 0, 0, err
	}
	parts := strings.Split(strings.TrimSpace(output), "x")
	if len(parts) != 2 {
		return 0, 0, services.Wrap(services.ErrMediaUnreadable, "inspector", "dimensions",
			fmt.Sprintf("unparseable dimensions %q for %s", strings.TrimSpace(output), path), nil)
	}
	width, werr := strconv.Atoi(parts[0])
	height, herr := strconv.Atoi(parts[1])
	if werr != nil || herr != nil || width <= 0 || height <= 0 {
		return 0, 0, services.Wrap(services.ErrMediaUnreadable, "inspector", "dimensions",
			fmt.Sprintf("invalid dimensions %q for %s", strings.TrimSpace(output), path), nil)
	}
	return width, height, nil
}

// Describe queries both duration and dimensions for path.
func (i *Inspector) Describe(ctx context.Context, path string) (Descriptor, error) {
	duration, err := i.Duration(ctx, path)
	if err != nil {
		return Descriptor{}, err
	}
	width, height, err := i.Dimensions(ctx, path)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Path: path, DurationSeconds: duration, Width: width, Height: height}, nil
}

func (i *Inspector) query(ctx context.Context, path string, entries ...string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", services.Wrap(services.ErrMediaUnreadable, "inspector", "query", "empty path", nil)
	}
	args := append([]string{"-v", "error"}, entries...)
	args = append(args, "--", path)
	output, err := i.exec.Output(ctx, i.binary, args)
	if err != nil {
		return "", services.Wrap(services.ErrMediaUnreadable, "inspector", "query",
			fmt.Sprintf("probe %s", path), fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output))))
	}
	if strings.TrimSpace(string(output)) == "" {
		return "", services.Wrap(services.ErrMediaUnreadable, "inspector", "query",
			fmt.Sprintf("empty probe output for %s", path), nil)
	}
	return string(output), nil
}

type commandExecutor struct{}

func (commandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.CombinedOutput()
}
