package motion

import (
	"fmt"
	"math"
	"strings"

	"reelforge/internal/services"
)

// Easing selects the interpolation curve applied to motion progress.
type Easing int

const (
	EasingLinear Easing = iota
	EasingEaseIn
	EasingEaseOut
	EasingEaseInOut
)

var easingNames = map[Easing]string{
	EasingLinear:    "linear",
	EasingEaseIn:    "ease_in",
	EasingEaseOut:   "ease_out",
	EasingEaseInOut: "ease_in_out",
}

func (e Easing) String() string {
	if name, ok := easingNames[e]; ok {
		return name
	}
	return "linear"
}

// ParseEasing resolves an easing by name.
func ParseEasing(name string) (Easing, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for easing, label := range easingNames {
		if key == label {
			return easing, nil
		}
	}
	return EasingLinear, services.Wrap(services.ErrConfiguration, "motion", "easing",
		fmt.Sprintf("unknown easing %q", name), nil)
}

// Expression renders the easing curve as a filter expression over the given
// progress sub-expression (a value in [0,1]).
func (e Easing) Expression(progress string) string {
	switch e {
	case EasingEaseIn:
		return fmt.Sprintf("pow(%s,2)", progress)
	case EasingEaseOut:
		return fmt.Sprintf("(1-pow(1-%s,2))", progress)
	case EasingEaseInOut:
		return fmt.Sprintf("((1-cos(PI*%s))/2)", progress)
	default:
		return progress
	}
}

// Evaluate computes the eased progress for frame n of frameCount. It mirrors
// Expression exactly so tests can assert boundary behaviour numerically.
func (e Easing) Evaluate(n, frameCount int) float64 {
	if frameCount <= 0 {
		return 0
	}
	t := float64(n) / float64(frameCount)
	switch e {
	case EasingEaseIn:
		return t * t
	case EasingEaseOut:
		return 1 - (1-t)*(1-t)
	case EasingEaseInOut:
		return (1 - math.Cos(math.Pi*t)) / 2
	default:
		return t
	}
}

// Easings lists every supported easing.
func Easings() []Easing {
	return []Easing{EasingLinear, EasingEaseIn, EasingEaseOut, EasingEaseInOut}
}
