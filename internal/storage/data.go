package storage

// Artifact is the output set for one converted document. Document is
// nil when the conversion failed; the report is always present so the
// failure stays reviewable.
type Artifact struct {
	// Stem is the filename stem shared by every artifact of the
	// document, typically derived from the source file name.
	Stem string
	// Document is the canonical serialized document.
	Document []byte
	// Report is the serialized audit report.
	Report []byte
	// Preview is the optional markdown preview.
	Preview []byte
}

type WriteResult struct {
	documentPath string
	reportPath   string
	previewPath  string
	contentHash  string
}

func NewWriteResult(
	documentPath string,
	reportPath string,
	previewPath string,
	contentHash string,
) WriteResult {
	return WriteResult{
		documentPath: documentPath,
		reportPath:   reportPath,
		previewPath:  previewPath,
		contentHash:  contentHash,
	}
}

// DocumentPath is empty when the artifact carried no document.
func (w *WriteResult) DocumentPath() string {
	return w.documentPath
}

func (w *WriteResult) ReportPath() string {
	return w.reportPath
}

// PreviewPath is empty when no preview was requested.
func (w *WriteResult) PreviewPath() string {
	return w.previewPath
}

// ContentHash identifies the canonical document bytes, prefixed with
// the algorithm name. Reruns over unchanged input produce the same
// hash.
func (w *WriteResult) ContentHash() string {
	return w.contentHash
}
