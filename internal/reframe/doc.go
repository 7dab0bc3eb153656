// Package reframe maps source frame geometry onto the fixed social-media
// output targets: scale plus center crop (fill) or scale plus pad (fit).
package reframe
