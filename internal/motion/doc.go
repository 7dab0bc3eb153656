// Package motion synthesizes pan and zoom filter chains for individual
// segments: per-frame crop offset or zoom expressions modulated by an easing
// curve, bounded so the crop window never leaves the scaled source.
//
// Fragments are validated through a dry run against a solid-color test clip
// before the assembler is allowed to use them.
package motion
