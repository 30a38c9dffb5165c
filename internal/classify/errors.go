package classify

import (
	"fmt"

	"github.com/rohmanhakim/richtext-converter/pkg/failure"
)

type ClassifyErrorCause string

const (
	ErrCauseBadSelector ClassifyErrorCause = "bad selector"
)

type ClassifyError struct {
	Message string
	Cause   ClassifyErrorCause
}

func (e *ClassifyError) Error() string {
	return fmt.Sprintf("classify error: %s: %s", e.Cause, e.Message)
}

// A rule that cannot compile makes the whole bundle unusable.
func (e *ClassifyError) Severity() failure.Severity {
	return failure.SeverityFatal
}
