package overlay

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reelforge/internal/services"
)

// Style is a named text preset: base sizing bounds, colors, and the vertical
// anchor for static cues. Glow styles render additional stacked outlined
// copies behind the face text.
type Style struct {
	Name             string
	BaseSize         int
	MinSize          int
	MaxSize          int
	FontColor        string
	BorderColor      string
	BorderWidth      int
	VerticalFraction float64
	Glow             bool
}

// Title returns a human-readable label for CLI output.
func (s Style) Title() string {
	return cases.Title(language.English).String(s.Name)
}

var styles = map[string]Style{
	"default": {
		Name: "default", BaseSize: 48, MinSize: 24, MaxSize: 72,
		FontColor: "white", BorderColor: "black", BorderWidth: 2,
		VerticalFraction: 0.85,
	},
	"pulse": {
		Name: "pulse", BaseSize: 56, MinSize: 28, MaxSize: 84,
		FontColor: "white", BorderColor: "0x202020", BorderWidth: 3,
		VerticalFraction: 0.80, Glow: true,
	},
	"pro": {
		Name: "pro", BaseSize: 44, MinSize: 22, MaxSize: 64,
		FontColor: "white", BorderColor: "black", BorderWidth: 1,
		VerticalFraction: 0.88,
	},
	"promo": {
		Name: "promo", BaseSize: 40, MinSize: 20, MaxSize: 60,
		FontColor: "yellow", BorderColor: "black", BorderWidth: 2,
		VerticalFraction: 0.82,
	},
	"impact": {
		Name: "impact", BaseSize: 64, MinSize: 32, MaxSize: 96,
		FontColor: "white", BorderColor: "black", BorderWidth: 4,
		VerticalFraction: 0.50,
	},
	"concert": {
		Name: "concert", BaseSize: 72, MinSize: 36, MaxSize: 104,
		FontColor: "white", BorderColor: "0x101030", BorderWidth: 3,
		VerticalFraction: 0.75, Glow: true,
	},
}

// LookupStyle resolves a style preset by name.
func LookupStyle(name string) (Style, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "default"
	}
	if style, ok := styles[key]; ok {
		return style, nil
	}
	return Style{}, services.Wrap(services.ErrConfiguration, "overlay", "style",
		fmt.Sprintf("unknown text style %q (supported: %s)", name, strings.Join(StyleNames(), ", ")), nil)
}

// StyleNames lists every preset name, sorted.
func StyleNames() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
