package storage

import (
	"fmt"

	"github.com/rohmanhakim/richtext-converter/pkg/failure"
)

type StorageErrorCause string

const (
	ErrCauseEmptyStem             StorageErrorCause = "empty artifact stem"
	ErrCauseWriteFailure          StorageErrorCause = "write failed"
	ErrCauseHashComputationFailed StorageErrorCause = "hash computation failed"
)

type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s", e.Cause)
}

func (e *StorageError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
