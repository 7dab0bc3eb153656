// Package overlay plans text cues for montage output: it sizes and wraps
// phrases against the target frame, lays them onto the timeline with fades
// and gaps, and renders each cue as drawtext filter fragments.
package overlay
