/*
Package marks turns the stack of open inline elements at a text node
into a flat, deduplicated set of formatting marks.

Conversion Rules
  - Each inline tag maps through the rule table to zero or one mark kind
  - Nested repeats of a kind collapse to one mark (idempotent union)
  - When nested ancestors contribute conflicting attribute values for the
    same kind, the nearest ancestor wins
  - Unrecognized inline tags contribute no mark; their text content is
    retained and the tag is surfaced to the unmapped-tag report

The rule table is ordered data supplied per project, not code branches:
custom kinds keyed by class names on arbitrary inline tags are regular
rules, not special cases.
*/
package marks

import (
	"strings"

	"github.com/rohmanhakim/richtext-converter/internal/document"
	"golang.org/x/net/html"
)

// Rule maps one inline tag (optionally narrowed by a class name) to a
// mark kind. The first matching rule in declared order wins.
type Rule struct {
	// Tag is the inline element name this rule applies to.
	Tag string `json:"tag"`
	// Class, when set, requires the element to carry this class.
	Class string `json:"class,omitempty"`
	// Kind is the resulting mark kind.
	Kind string `json:"kind"`
	// CaptureAttrs lists element attributes copied onto the mark,
	// e.g. href for links.
	CaptureAttrs []string `json:"captureAttrs,omitempty"`
	// MultiValued allows the kind to appear more than once in a single
	// mark set (distinct attribute payloads only).
	MultiValued bool `json:"multiValued,omitempty"`
}

// DefaultRules is the baseline tag table shared by every project.
func DefaultRules() []Rule {
	return []Rule{
		{Tag: "b", Kind: "bold"},
		{Tag: "strong", Kind: "bold"},
		{Tag: "i", Kind: "italic"},
		{Tag: "em", Kind: "italic"},
		{Tag: "a", Kind: "link", CaptureAttrs: []string{"href", "title"}},
		{Tag: "code", Kind: "code"},
		{Tag: "u", Kind: "underline"},
		{Tag: "s", Kind: "strike"},
		{Tag: "del", Kind: "strike"},
		{Tag: "strike", Kind: "strike"},
		{Tag: "sub", Kind: "subscript"},
		{Tag: "sup", Kind: "superscript"},
		{Tag: "mark", Kind: "highlight"},
		{Tag: "abbr", Kind: "abbreviation", CaptureAttrs: []string{"title"}},
	}
}

type RuleSet struct {
	rules []Rule
	byTag map[string][]int
}

func NewRuleSet(rules []Rule) RuleSet {
	rs := RuleSet{
		rules: rules,
		byTag: make(map[string][]int, len(rules)),
	}
	for i, r := range rules {
		tag := strings.ToLower(r.Tag)
		rs.byTag[tag] = append(rs.byTag[tag], i)
	}
	return rs
}

// Covers reports whether any rule exists for the tag, matching or not.
// The converter uses it to tell inline elements from block elements.
func (rs RuleSet) Covers(tag string) bool {
	_, ok := rs.byTag[strings.ToLower(tag)]
	return ok
}

// Recognizes reports whether some rule actually matches the element,
// class narrowing included.
func (rs RuleSet) Recognizes(n *html.Node) bool {
	_, ok := rs.match(n)
	return ok
}

// Resolve flattens the stack of open inline elements
// (outermost-first) into a canonical mark set. The second return value
// lists elements no rule recognized; their content was kept unmarked
// and the caller must report them.
func (rs RuleSet) Resolve(open []*html.Node) ([]document.Mark, []*html.Node) {
	var resolved []document.Mark
	position := make(map[string]int)
	var unmapped []*html.Node

	for _, n := range open {
		rule, ok := rs.match(n)
		if !ok {
			unmapped = append(unmapped, n)
			continue
		}

		attrs := captureAttrs(rule, n)

		if rule.MultiValued {
			if !containsMark(resolved, document.Mark{Kind: rule.Kind, Attrs: attrs}) {
				resolved = append(resolved, document.Mark{Kind: rule.Kind, Attrs: attrs})
			}
			continue
		}

		if pos, exists := position[rule.Kind]; exists {
			// Idempotent union: no duplicate mark. Attribute conflicts
			// resolve toward the nearest (innermost) ancestor, which is
			// visited last.
			for k, v := range attrs {
				if resolved[pos].Attrs == nil {
					resolved[pos].Attrs = make(map[string]string)
				}
				resolved[pos].Attrs[k] = v
			}
			continue
		}

		position[rule.Kind] = len(resolved)
		resolved = append(resolved, document.Mark{Kind: rule.Kind, Attrs: attrs})
	}

	document.SortMarks(resolved)
	return resolved, unmapped
}

// match finds the first rule for the element, honoring class
// narrowing: a rule with a Class only applies when the element carries
// that class.
func (rs RuleSet) match(n *html.Node) (Rule, bool) {
	indices, ok := rs.byTag[strings.ToLower(n.Data)]
	if !ok {
		return Rule{}, false
	}

	var classes []string
	for _, idx := range indices {
		rule := rs.rules[idx]
		if rule.Class == "" {
			return rule, true
		}
		if classes == nil {
			classes = elementClasses(n)
		}
		for _, c := range classes {
			if c == rule.Class {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

// captureAttrs copies the rule-declared attributes plus every data-*
// attribute onto the mark, so embedded data on inline elements survives
// conversion.
func captureAttrs(rule Rule, n *html.Node) map[string]string {
	var out map[string]string
	put := func(k, v string) {
		if out == nil {
			out = make(map[string]string)
		}
		out[k] = v
	}
	for _, key := range rule.CaptureAttrs {
		for _, a := range n.Attr {
			if a.Key == key {
				put(key, a.Val)
			}
		}
	}
	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "data-") {
			put(a.Key, a.Val)
		}
	}
	return out
}

func containsMark(set []document.Mark, m document.Mark) bool {
	for _, existing := range set {
		if document.MarkEqual(existing, m) {
			return true
		}
	}
	return false
}

func elementClasses(n *html.Node) []string {
	for _, a := range n.Attr {
		if a.Key == "class" {
			return strings.Fields(a.Val)
		}
	}
	return nil
}
