package reframe

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reelforge/internal/services"
)

// Target is a named output geometry. Width and height are fixed per name;
// consumers look targets up by name only.
type Target struct {
	Name   string
	Width  int
	Height int
}

// Ratio returns width/height.
func (t Target) Ratio() float64 {
	return float64(t.Width) / float64(t.Height)
}

// Title returns a human-readable label for CLI output.
func (t Target) Title() string {
	return cases.Title(language.English).String(strings.ReplaceAll(t.Name, "_", " "))
}

func (t Target) String() string {
	return fmt.Sprintf("%s (%dx%d)", t.Name, t.Width, t.Height)
}

var (
	verticalPortrait = Target{Name: "vertical_portrait", Width: 1080, Height: 1920}
	square           = Target{Name: "square", Width: 1080, Height: 1080}

	// Earlier revisions modeled the 9:16 platforms as distinct targets with
	// identical dimensions; they survive as aliases.
	targetAliases = map[string]Target{
		"vertical_portrait": verticalPortrait,
		"reel":              verticalPortrait,
		"instagram_reel":    verticalPortrait,
		"tiktok":            verticalPortrait,
		"square":            square,
		"instagram_square":  square,
	}
)

// LookupTarget resolves an aspect target by name. Unknown names fail with an
// error mentioning "aspect".
func LookupTarget(name string) (Target, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if target, ok := targetAliases[key]; ok {
		return target, nil
	}
	return Target{}, services.Wrap(services.ErrUnsupportedAspect, "reframe", "lookup",
		fmt.Sprintf("unknown aspect target %q (supported: %s)", name, strings.Join(TargetNames(), ", ")), nil)
}

// TargetNames lists every accepted target name, sorted.
func TargetNames() []string {
	names := make([]string, 0, len(targetAliases))
	for name := range targetAliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Targets lists the distinct target geometries.
func Targets() []Target {
	return []Target{verticalPortrait, square}
}
