/*
Package quarantine isolates executable or otherwise unsafe content.

Responsibilities
  - Decide, from a configurable tag denylist, which subtrees never reach
    the classifier or mark resolver
  - Capture the removed subtree verbatim (raw markup, tree position,
    reason, content hash) for manual review

The package deliberately does not execute, sanitize in place, or repair
unsafe content. It only isolates and reports; the discard-or-port
decision belongs to an external operator.
*/
package quarantine

import (
	"strings"

	"github.com/rohmanhakim/richtext-converter/pkg/hashutil"
	"golang.org/x/net/html"
)

type Reason string

const (
	// ReasonDeniedTag marks a subtree removed because its tag is on the
	// denylist.
	ReasonDeniedTag Reason = "denied_tag"
	// ReasonEventHandler marks an on* attribute stripped from an
	// otherwise convertible element.
	ReasonEventHandler Reason = "event_handler"
)

// Entry is one quarantined finding. Entries live exclusively in the
// side-channel report; they never become part of the document tree.
type Entry struct {
	RawMarkup string `json:"rawMarkup"`
	Path      []int  `json:"positionPath"`
	Reason    Reason `json:"reason"`
	// Hash is the blake3 digest of RawMarkup, prefixed with the
	// algorithm name, so review tooling can deduplicate findings.
	Hash string `json:"hash,omitempty"`
}

// Denylist is the set of element names that must never pass through.
type Denylist struct {
	tags map[string]struct{}
}

func NewDenylist(tags []string) Denylist {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return Denylist{tags: set}
}

// DefaultTags lists the element names denied when no project-specific
// denylist is configured.
func DefaultTags() []string {
	return []string{"script", "iframe", "object", "embed", "form"}
}

func (d Denylist) Denied(tag string) bool {
	_, ok := d.tags[strings.ToLower(tag)]
	return ok
}

// CaptureNode renders a subtree back to markup and wraps it in an
// Entry. The input node is read, never detached or mutated.
func CaptureNode(n *html.Node, path []int, reason Reason) Entry {
	var buf strings.Builder
	// Render only fails on writer errors; strings.Builder never does.
	_ = html.Render(&buf, n)
	return newEntry(buf.String(), path, reason)
}

// CaptureAttr records a stripped attribute in its source form.
func CaptureAttr(key, value string, path []int) Entry {
	raw := key + `="` + value + `"`
	return newEntry(raw, path, ReasonEventHandler)
}

func newEntry(raw string, path []int, reason Reason) Entry {
	hash, err := hashutil.HashString(raw, hashutil.HashAlgoBLAKE3)
	if err != nil {
		hash = ""
	}
	// Copy the path: callers reuse their index stack while walking.
	p := make([]int, len(path))
	copy(p, path)
	return Entry{
		RawMarkup: raw,
		Path:      p,
		Reason:    reason,
		Hash:      hash,
	}
}
