// Package pipeline holds the tagged error kinds shared across the intake
// pipeline. Callers classify failures with errors.Is / errors.As; nothing
// is silently swallowed except the documented fire-and-forget side effects.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks an unknown complaint or submitter id.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks a role-gated operation denied to the caller.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition marks a lifecycle rule violation. The complaint
	// is left untouched.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError rejects missing or malformed fields before any side
// effect happens.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Msg)
}

// SpamRejectedError is the screening gate's verdict: the submission was
// refused and no complaint was created. Reasons carries every triggered
// check.
type SpamRejectedError struct {
	Reasons []string
}

func (e *SpamRejectedError) Error() string {
	return "spam detected: " + strings.Join(e.Reasons, ", ")
}
