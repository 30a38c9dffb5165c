package convert

import (
	"fmt"

	"github.com/rohmanhakim/richtext-converter/pkg/failure"
)

type ConversionErrorCause string

const (
	ErrCauseStructuralLimit  ConversionErrorCause = "structural limit exceeded"
	ErrCauseStrictQuarantine ConversionErrorCause = "strict quarantine"
	ErrCauseNilInput         ConversionErrorCause = "nil input"
)

type ConversionError struct {
	Message string
	Cause   ConversionErrorCause
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion error: %s", e.Cause)
}

// Everything that surfaces as a ConversionError aborts the document;
// recoverable conditions never become errors here, they become audit
// entries.
func (e *ConversionError) Severity() failure.Severity {
	return failure.SeverityFatal
}
