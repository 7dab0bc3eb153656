package motion

import (
	"fmt"
	"strings"

	"reelforge/internal/services"
)

// Direction selects the pan or zoom applied across a segment.
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
	TopToBottom
	BottomToTop
	ZoomIn
	ZoomOut
)

var directionNames = map[Direction]string{
	LeftToRight: "left_to_right",
	RightToLeft: "right_to_left",
	TopToBottom: "top_to_bottom",
	BottomToTop: "bottom_to_top",
	ZoomIn:      "zoom_in",
	ZoomOut:     "zoom_out",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return "left_to_right"
}

// IsZoom reports whether the direction interpolates scale instead of offset.
func (d Direction) IsZoom() bool {
	return d == ZoomIn || d == ZoomOut
}

// ParseDirection resolves a direction by name.
func ParseDirection(name string) (Direction, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for direction, label := range directionNames {
		if key == label {
			return direction, nil
		}
	}
	return LeftToRight, services.Wrap(services.ErrConfiguration, "motion", "direction",
		fmt.Sprintf("unknown pan direction %q", name), nil)
}

// Directions lists every supported direction, pans before zooms.
func Directions() []Direction {
	return []Direction{LeftToRight, RightToLeft, TopToBottom, BottomToTop, ZoomIn, ZoomOut}
}
