/*
Package attrs pulls structured and unrecognized data-carrying
attributes off an element into a preserved attribute map.

Guarantee: no data-bearing attribute is ever silently dropped. Each
attribute is exactly one of:
  - typed, when a registered embed schema or a well-known key claims it
  - bucketed verbatim under "extra"
  - consumed by another component (class by the classifier, spans by
    the table converter), which is the caller's declaration
  - routed to quarantine, for on* event handlers, which must never be
    emitted into the document tree
*/
package attrs

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

type FieldKind string

const (
	FieldString FieldKind = "string"
	FieldInt    FieldKind = "int"
	FieldBool   FieldKind = "bool"
)

// Field binds one data attribute to a typed value on the embed.
type Field struct {
	Name string    `json:"name"`
	Attr string    `json:"attr"`
	Kind FieldKind `json:"kind"`
}

// Schema describes one registered embed/graph type, keyed by the data
// attributes it recognizes (e.g. type "video" claiming data-video-id).
type Schema struct {
	Type   string  `json:"type"`
	Fields []Field `json:"fields"`
}

type Registry struct {
	schemas []Schema
}

func NewRegistry(schemas []Schema) Registry {
	return Registry{schemas: schemas}
}

// Extraction is the routing outcome for one element's attributes.
type Extraction struct {
	// EmbedType is non-empty when a registered schema matched.
	EmbedType string
	// Typed holds validated values for recognized keys.
	Typed map[string]any
	// Extra holds every other data-bearing attribute verbatim.
	Extra map[string]string
	// Handlers are stripped on* attributes, to be quarantined by the
	// caller.
	Handlers []html.Attribute
}

// Extract routes every attribute of the element. consumed names
// attributes the caller handles itself and must not appear anywhere in
// the extraction.
func (r Registry) Extract(n *html.Node, consumed map[string]struct{}) Extraction {
	var out Extraction

	schema, claimed := r.matchSchema(n)
	if claimed != nil {
		out.EmbedType = schema.Type
	}

	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)

		if _, ok := consumed[key]; ok {
			continue
		}
		if strings.HasPrefix(key, "on") && len(key) > 2 {
			out.Handlers = append(out.Handlers, a)
			continue
		}

		if field, ok := claimed[key]; ok {
			value, ok := convertField(field.Kind, a.Val)
			if ok {
				out.setTyped(field.Name, value)
			} else {
				// Failed validation is not silent loss: keep the raw
				// value in the bucket.
				out.setExtra(key, a.Val)
			}
			continue
		}

		if isWellKnown(key) {
			out.setTyped(key, a.Val)
			continue
		}

		out.setExtra(key, a.Val)
	}

	return out
}

// matchSchema returns the first registered schema, in declared order,
// for which the element carries at least one claimed attribute.
func (r Registry) matchSchema(n *html.Node) (Schema, map[string]Field) {
	for _, s := range r.schemas {
		var claimed map[string]Field
		for _, f := range s.Fields {
			attr := strings.ToLower(f.Attr)
			for _, a := range n.Attr {
				if strings.ToLower(a.Key) == attr {
					if claimed == nil {
						claimed = make(map[string]Field, len(s.Fields))
					}
					claimed[attr] = f
				}
			}
		}
		if claimed != nil {
			// Claim every declared field, present or not, so a partial
			// element cannot leak schema attrs into the bucket.
			for _, f := range s.Fields {
				attr := strings.ToLower(f.Attr)
				if _, ok := claimed[attr]; !ok {
					claimed[attr] = f
				}
			}
			return s, claimed
		}
	}
	return Schema{}, nil
}

func convertField(kind FieldKind, raw string) (any, bool) {
	switch kind {
	case FieldInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, false
		}
		return n, true
	case FieldBool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, false
		}
		return b, true
	default:
		return raw, true
	}
}

// isWellKnown lists attribute keys typed directly on any block without
// a schema: identity and media attributes every renderer understands.
func isWellKnown(key string) bool {
	switch key {
	case "id", "src", "alt", "title":
		return true
	}
	return false
}

func (e *Extraction) setTyped(key string, value any) {
	if e.Typed == nil {
		e.Typed = make(map[string]any)
	}
	e.Typed[key] = value
}

func (e *Extraction) setExtra(key, value string) {
	if e.Extra == nil {
		e.Extra = make(map[string]string)
	}
	e.Extra[key] = value
}
