// Package assembler orchestrates a montage build end to end. A run walks a
// strict forward state machine (init, segments extracted, concatenated,
// composited, verified, done) inside a locked transient workspace. Failures
// classified as retryable get one more attempt, then a single-pass composite
// fallback, before the error reaches the caller.
package assembler
