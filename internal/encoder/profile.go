package encoder

import (
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"

	"reelforge/internal/logging"
)

// Profile describes the encoder settings chosen for a run: the codec
// implementation handed to the external tool and the thread count for
// software encodes.
type Profile struct {
	EncoderID   string
	ThreadCount int
	Hardware    bool
}

// Args returns the encoder arguments for an output encode.
func (p Profile) Args() []string {
	args := []string{"-c:v", p.EncoderID}
	if !p.Hardware && p.ThreadCount > 0 {
		args = append(args, "-threads", strconv.Itoa(p.ThreadCount))
	}
	return args
}

// Prober selects an encoder profile for the host. Lookup and platform checks
// are injectable so tests can script any host shape.
type Prober struct {
	goos     string
	lookPath func(string) (string, error)
	numCPU   func() int
	logger   *slog.Logger
}

// Option adjusts prober construction.
type Option func(*Prober)

// WithGOOS overrides the detected operating system.
func WithGOOS(goos string) Option {
	return func(p *Prober) { p.goos = goos }
}

// WithLookPath overrides binary discovery.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(p *Prober) {
		if fn != nil {
			p.lookPath = fn
		}
	}
}

// WithNumCPU overrides the detected CPU count.
func WithNumCPU(fn func() int) Option {
	return func(p *Prober) {
		if fn != nil {
			p.numCPU = fn
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProber builds a prober bound to the real host by default.
func NewProber(opts ...Option) *Prober {
	prober := &Prober{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		numCPU:   runtime.NumCPU,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(prober)
	}
	return prober
}

// Probe picks the encoder profile for this host. Hardware acceleration is
// preferred when its management tooling is visible; anything uncertain falls
// back to the software encoder. Probe never fails.
func (p *Prober) Probe() Profile {
	threads := p.numCPU()
	if threads < 1 {
		threads = 1
	}
	if p.goos == "darwin" {
		p.logger.Debug("selected hardware encoder",
			logging.FieldComponent, "encoder", "encoder", "h264_videotoolbox")
		return Profile{EncoderID: "h264_videotoolbox", ThreadCount: threads, Hardware: true}
	}
	if _, err := p.lookPath("nvidia-smi"); err == nil {
		p.logger.Debug("selected hardware encoder",
			logging.FieldComponent, "encoder", "encoder", "h264_nvenc")
		return Profile{EncoderID: "h264_nvenc", ThreadCount: threads, Hardware: true}
	}
	if p.goos == "linux" {
		if _, err := p.lookPath("vainfo"); err == nil {
			p.logger.Debug("selected hardware encoder",
				logging.FieldComponent, "encoder", "encoder", "h264_vaapi")
			return Profile{EncoderID: "h264_vaapi", ThreadCount: threads, Hardware: true}
		}
	}
	p.logger.Debug("selected software encoder",
		logging.FieldComponent, "encoder", "encoder", "libx264", "threads", threads)
	return Profile{EncoderID: "libx264", ThreadCount: threads}
}
