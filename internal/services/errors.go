package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks failures reported by the external processing tool.
	ErrExternalTool = errors.New("external tool error")
	// ErrMediaUnreadable marks inspector output that could not be parsed.
	ErrMediaUnreadable = errors.New("media unreadable")
	// ErrUnsupportedAspect marks requests for an unknown aspect target.
	ErrUnsupportedAspect = errors.New("unsupported aspect")
	// ErrMotionUnavailable marks motion synthesis that failed validation.
	ErrMotionUnavailable = errors.New("motion unavailable")
	// ErrInsufficientSegments marks runs that could not gather enough segments.
	ErrInsufficientSegments = errors.New("insufficient segments")
	// ErrCompositeFailed marks final filter-graph invocations that failed.
	ErrCompositeFailed = errors.New("composite failed")
	// ErrOutputVerification marks outputs whose duration or existence checks failed.
	ErrOutputVerification = errors.New("output verification failed")
	// ErrConfiguration marks invalid or missing configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether a failure is worth one more attempt with simpler
// parameters. Tool failures and failed composites may succeed with a reduced
// filter; unreadable media and configuration problems never will.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrMediaUnreadable),
		errors.Is(err, ErrUnsupportedAspect),
		errors.Is(err, ErrInsufficientSegments),
		errors.Is(err, ErrConfiguration):
		return false
	default:
		return true
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
