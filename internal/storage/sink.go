package storage

import (
	"errors"
	"path/filepath"

	"github.com/rohmanhakim/richtext-converter/pkg/failure"
	"github.com/rohmanhakim/richtext-converter/pkg/fileutil"
	"github.com/rohmanhakim/richtext-converter/pkg/hashutil"
)

/*
Responsibilities
- Persist the artifact set of one converted document: canonical
  document JSON, audit report JSON, optional markdown preview
- Ensure deterministic filenames derived from the artifact stem

Output Characteristics
- Stable directory layout
- Idempotent writes
- Overwrite-safe reruns
*/

type Sink interface {
	Write(
		outputDir string,
		artifact Artifact,
		hashAlgo hashutil.HashAlgo,
	) (WriteResult, failure.ClassifiedError)
}

type LocalSink struct{}

func NewLocalSink() LocalSink {
	return LocalSink{}
}

func (s *LocalSink) Write(
	outputDir string,
	artifact Artifact,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	if artifact.Stem == "" {
		return WriteResult{}, &StorageError{
			Message:   "artifact stem must not be empty",
			Retryable: false,
			Cause:     ErrCauseEmptyStem,
		}
	}

	contentHash := ""
	if artifact.Document != nil {
		hash, err := hashutil.HashString(string(artifact.Document), hashAlgo)
		if err != nil {
			return WriteResult{}, &StorageError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseHashComputationFailed,
			}
		}
		contentHash = hash
	}

	reportName := artifact.Stem + ".report.json"
	if err := fileutil.WriteFile(outputDir, reportName, artifact.Report); err != nil {
		return WriteResult{}, wrapFileError(err)
	}
	result := WriteResult{
		reportPath:  filepath.Join(outputDir, reportName),
		contentHash: contentHash,
	}

	if artifact.Document != nil {
		docName := artifact.Stem + ".json"
		if err := fileutil.WriteFile(outputDir, docName, artifact.Document); err != nil {
			return WriteResult{}, wrapFileError(err)
		}
		result.documentPath = filepath.Join(outputDir, docName)
	}

	if artifact.Preview != nil {
		previewName := artifact.Stem + ".preview.md"
		if err := fileutil.WriteFile(outputDir, previewName, artifact.Preview); err != nil {
			return WriteResult{}, wrapFileError(err)
		}
		result.previewPath = filepath.Join(outputDir, previewName)
	}

	return result, nil
}

func wrapFileError(err failure.ClassifiedError) failure.ClassifiedError {
	var fileErr *fileutil.FileError
	if errors.As(err, &fileErr) {
		return &StorageError{
			Message:   fileErr.Message,
			Retryable: fileErr.Retryable,
			Cause:     ErrCauseWriteFailure,
		}
	}
	return &StorageError{
		Message:   err.Error(),
		Retryable: false,
		Cause:     ErrCauseWriteFailure,
	}
}
