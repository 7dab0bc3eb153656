package segments

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// energyWindow is one fixed-length audio window with its measured RMS level.
type energyWindow struct {
	startTime float64
	rmsDB     float64
}

// analysisSampleRate keeps window arithmetic simple: one astats frame per
// window at a fixed resample rate.
const analysisSampleRate = 8000

// highEnergyLimit caps how many loud windows feed candidate generation.
const highEnergyLimit = 20

// measureEnergy runs the external tool's audio-statistics filter over fixed
// windows and returns the windows ranked loudest first. The diagnostic stream
// carries the per-window metadata.
func (s *Selector) measureEnergy(ctx context.Context, path string, windowSeconds float64) ([]energyWindow, error) {
	samplesPerWindow := int(float64(analysisSampleRate) * windowSeconds)
	if samplesPerWindow < 1 {
		samplesPerWindow = analysisSampleRate
	}
	filter := strings.Join([]string{
		fmt.Sprintf("aresample=%d", analysisSampleRate),
		fmt.Sprintf("asetnsamples=n=%d", samplesPerWindow),
		"astats=metadata=1:reset=1",
		"ametadata=mode=print:key=lavfi.astats.Overall.RMS_level",
	}, ",")

	diagnostics, err := s.runner.Run(ctx,
		"-i", path,
		"-vn",
		"-af", filter,
		"-f", "null", "-",
	)
	if err != nil {
		return nil, err
	}

	windows := parseEnergyWindows(diagnostics)
	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].rmsDB > windows[j].rmsDB
	})
	if len(windows) > highEnergyLimit {
		windows = windows[:highEnergyLimit]
	}
	return windows, nil
}

// parseEnergyWindows extracts (pts_time, RMS level) pairs from ametadata
// print output. Windows whose level cannot be parsed (digital silence prints
// "-inf") are ranked at the bottom rather than dropped.
func parseEnergyWindows(diagnostics string) []energyWindow {
	var windows []energyWindow
	currentTime := math.NaN()
	for _, line := range strings.Split(diagnostics, "\n") {
		line = strings.TrimSpace(line)
		if idx := strings.Index(line, "pts_time:"); idx >= 0 {
			value := strings.Fields(line[idx+len("pts_time:"):])
			if len(value) > 0 {
				if parsed, err := strconv.ParseFloat(value[0], 64); err == nil {
					currentTime = parsed
				}
			}
			continue
		}
		if !strings.HasPrefix(line, "lavfi.astats.Overall.RMS_level=") {
			continue
		}
		if math.IsNaN(currentTime) {
			continue
		}
		levelText := strings.TrimPrefix(line, "lavfi.astats.Overall.RMS_level=")
		level, err := strconv.ParseFloat(levelText, 64)
		if err != nil || math.IsInf(level, -1) {
			level = -120
		}
		windows = append(windows, energyWindow{startTime: currentTime, rmsDB: level})
		currentTime = math.NaN()
	}
	return windows
}
