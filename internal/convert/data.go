package convert

import (
	"github.com/rohmanhakim/richtext-converter/internal/document"
	"github.com/rohmanhakim/richtext-converter/internal/quarantine"
	"github.com/rohmanhakim/richtext-converter/internal/report"
	"github.com/rohmanhakim/richtext-converter/pkg/failure"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is the complete per-document output: the canonical document
// plus the side-channel reports. On failure Document is nil; a failed
// conversion never emits a partial tree. The reports gathered up to the
// failure point are kept for diagnosis.
type Result struct {
	Status         Status
	Document       *document.Document
	Quarantined    []quarantine.Entry
	UnmappedTags   []report.UnmappedTag
	Normalizations []report.Normalization
	Failure        failure.ClassifiedError
}

func successResult(doc *document.Document, rec *report.Recorder) Result {
	return Result{
		Status:         StatusSuccess,
		Document:       doc,
		Quarantined:    rec.Quarantined(),
		UnmappedTags:   rec.UnmappedTags(),
		Normalizations: rec.Normalizations(),
	}
}

func failureResult(rec *report.Recorder, err failure.ClassifiedError) Result {
	return Result{
		Status:         StatusFailure,
		Quarantined:    rec.Quarantined(),
		UnmappedTags:   rec.UnmappedTags(),
		Normalizations: rec.Normalizations(),
		Failure:        err,
	}
}
