package config

const (
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultTempRoot      = "~/.cache/reelforge/work"
	defaultLogDir        = "~/.local/share/reelforge/logs"
	defaultLogLevel      = "info"
	defaultLogFormat     = "console"

	defaultSegmentsFew      = 4
	defaultSegmentsSome     = 6
	defaultSegmentsLots     = 9
	defaultFPS              = 30
	defaultPanDistance      = 0.2
	defaultMinFreeGiB       = 2
	defaultEnergyWindowSecs = 3.0

	defaultMarginFraction = 0.2
	defaultMaxLines       = 3
	defaultFadeSeconds    = 0.5
	defaultCueGapSeconds  = 2.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Paths: Paths{
			TempRoot: defaultTempRoot,
			LogDir:   defaultLogDir,
		},
		Montage: Montage{
			SegmentsFew:      defaultSegmentsFew,
			SegmentsSome:     defaultSegmentsSome,
			SegmentsLots:     defaultSegmentsLots,
			FPS:              defaultFPS,
			PanDistance:      defaultPanDistance,
			MinFreeGiB:       defaultMinFreeGiB,
			EnergyWindowSecs: defaultEnergyWindowSecs,
		},
		Overlay: Overlay{
			MarginFraction: defaultMarginFraction,
			MaxLines:       defaultMaxLines,
			FadeSeconds:    defaultFadeSeconds,
			CueGapSeconds:  defaultCueGapSeconds,
		},
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}
}
