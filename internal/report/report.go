/*
Package report collects the side-channel audit output of a conversion.

Audit Goals
- Information loss is always visible, never silent
- Post-conversion review of quarantined and unmapped content
- Debuggable normalization decisions

Determinism guarantees:
  - Audit data does not affect control flow
  - Entries are recorded in document order
  - Output is stable given identical inputs

The sink is write-only. No component may read recorded audit data to
influence conversion decisions.
*/
package report

import (
	"github.com/rohmanhakim/richtext-converter/internal/quarantine"
)

type EventKind string

const (
	EventUnmappedInline     EventKind = "unmapped_inline"
	EventUnmappedBlock      EventKind = "unmapped_block"
	EventMalformedNesting   EventKind = "malformed_nesting"
	EventIrregularTableGrid EventKind = "irregular_table_grid"
)

// UnmappedTag aggregates every occurrence of a tag no rule recognized.
// SampleAttrs holds the attributes of the first occurrence.
type UnmappedTag struct {
	Tag         string            `json:"tag"`
	Count       int               `json:"count"`
	SampleAttrs map[string]string `json:"sampleAttrs,omitempty"`
}

// Normalization records a local, non-fatal repair (auto-wrapping,
// grid padding).
type Normalization struct {
	Kind   EventKind `json:"kind"`
	Path   []int     `json:"positionPath,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// AuditSink captures conversion audit events.
// It must not:
// - affect control flow
// - impose a logging backend
// Ordering follows the depth-first walk of a single document.
type AuditSink interface {
	RecordUnmappedTag(tag string, attrs map[string]string, kind EventKind)
	RecordNormalization(kind EventKind, path []int, detail string)
	RecordQuarantine(entry quarantine.Entry)
}

// Recorder is the collecting AuditSink used for real conversions. One
// Recorder serves exactly one document conversion and is not safe for
// concurrent use; concurrent batch conversion gives each document its
// own Recorder.
type Recorder struct {
	unmappedOrder []string
	unmapped      map[string]*UnmappedTag
	normalization []Normalization
	quarantined   []quarantine.Entry
}

func NewRecorder() *Recorder {
	return &Recorder{
		unmapped: make(map[string]*UnmappedTag),
	}
}

func (r *Recorder) RecordUnmappedTag(tag string, attrs map[string]string, kind EventKind) {
	if entry, ok := r.unmapped[tag]; ok {
		entry.Count++
		return
	}
	r.unmapped[tag] = &UnmappedTag{Tag: tag, Count: 1, SampleAttrs: attrs}
	r.unmappedOrder = append(r.unmappedOrder, tag)
}

func (r *Recorder) RecordNormalization(kind EventKind, path []int, detail string) {
	p := make([]int, len(path))
	copy(p, path)
	r.normalization = append(r.normalization, Normalization{Kind: kind, Path: p, Detail: detail})
}

func (r *Recorder) RecordQuarantine(entry quarantine.Entry) {
	r.quarantined = append(r.quarantined, entry)
}

// UnmappedTags returns aggregated unmapped-tag entries in first-seen
// order.
func (r *Recorder) UnmappedTags() []UnmappedTag {
	out := make([]UnmappedTag, 0, len(r.unmappedOrder))
	for _, tag := range r.unmappedOrder {
		out = append(out, *r.unmapped[tag])
	}
	return out
}

func (r *Recorder) Normalizations() []Normalization {
	return r.normalization
}

func (r *Recorder) Quarantined() []quarantine.Entry {
	return r.quarantined
}

// NoopSink discards every event. Callers that do not need audit output
// (previews, property tests) inject it to keep auditing orthogonal.
type NoopSink struct{}

func (NoopSink) RecordUnmappedTag(tag string, attrs map[string]string, kind EventKind) {}

func (NoopSink) RecordNormalization(kind EventKind, path []int, detail string) {}

func (NoopSink) RecordQuarantine(entry quarantine.Entry) {}

// Compile-time interface checks
var (
	_ AuditSink = (*Recorder)(nil)
	_ AuditSink = NoopSink{}
)
