package walker

import (
	"fmt"

	"github.com/rohmanhakim/richtext-converter/pkg/failure"
)

type WalkErrorCause string

const (
	ErrCauseDepthExceeded WalkErrorCause = "structural limit exceeded"
	ErrCauseNilInput      WalkErrorCause = "nil input"
)

type WalkError struct {
	Message string
	Cause   WalkErrorCause
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("walk error: %s", e.Cause)
}

// Structural violations are always fatal to the document: a truncated
// tree must never be emitted silently.
func (e *WalkError) Severity() failure.Severity {
	return failure.SeverityFatal
}
