package preview

import (
	"fmt"

	"github.com/rohmanhakim/richtext-converter/pkg/failure"
)

type PreviewErrorCause string

const (
	ErrCauseRenderFailure PreviewErrorCause = "render failure"
)

type PreviewError struct {
	Message string
	Cause   PreviewErrorCause
}

func (e *PreviewError) Error() string {
	return fmt.Sprintf("preview error: %s", e.Cause)
}

// A failed preview never blocks the conversion it accompanies.
func (e *PreviewError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
