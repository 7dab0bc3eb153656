package overlay

import "strings"

// Average glyph advance as a fraction of the font size. ffmpeg drawtext has
// no shaping metrics available ahead of time, so line fitting works from this
// estimate and the margin keeps estimation error off screen.
const glyphWidthRatio = 0.6

// shrinkStep is the font size decrement applied when wrapped text exceeds the
// allowed line count.
const shrinkStep = 4

// sizeForText scales a style's base size by phrase length and clamps the
// result to the style's bounds. Short punchy phrases render large, long ones
// small.
func sizeForText(style Style, text string) int {
	length := len([]rune(strings.TrimSpace(text)))
	var multiplier float64
	switch {
	case length <= 5:
		multiplier = 1.5
	case length <= 10:
		multiplier = 1.2
	case length <= 20:
		multiplier = 1.0
	case length <= 30:
		multiplier = 0.8
	default:
		multiplier = 0.6
	}
	size := int(float64(style.BaseSize) * multiplier)
	if size < style.MinSize {
		size = style.MinSize
	}
	if size > style.MaxSize {
		size = style.MaxSize
	}
	return size
}

// maxCharsPerLine estimates how many characters fit across the usable width
// at the given font size. Always at least one.
func maxCharsPerLine(availableWidth int, fontSize int) int {
	chars := int(float64(availableWidth) / (float64(fontSize) * glyphWidthRatio))
	if chars < 1 {
		chars = 1
	}
	return chars
}

// wrapText greedily packs words into lines no wider than maxChars. Words
// longer than a full line are force-split so no line ever exceeds the limit.
func wrapText(text string, maxChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
	}
	for _, word := range words {
		for len([]rune(word)) > maxChars {
			flush()
			runes := []rune(word)
			lines = append(lines, string(runes[:maxChars]))
			word = string(runes[maxChars:])
		}
		if word == "" {
			continue
		}
		needed := len([]rune(word))
		if current.Len() > 0 {
			needed += 1 + len([]rune(current.String()))
		}
		if current.Len() > 0 && needed > maxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	flush()
	return lines
}

// fitText wraps text at the largest font size whose line count stays within
// maxLines, shrinking toward the style minimum when needed. If the minimum
// size still overflows, the wrapped lines are truncated to maxLines.
func fitText(style Style, text string, availableWidth int, maxLines int) (int, []string) {
	size := sizeForText(style, text)
	for {
		lines := wrapText(text, maxCharsPerLine(availableWidth, size))
		if len(lines) <= maxLines {
			return size, lines
		}
		if size <= style.MinSize {
			return size, lines[:maxLines]
		}
		// The final step lands exactly on the minimum so that size gets a
		// chance to fit before anything is cut.
		size -= shrinkStep
		if size < style.MinSize {
			size = style.MinSize
		}
	}
}
