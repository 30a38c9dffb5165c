/*
Package classify maps a block-level element to a semantic block type.

Classification happens in two layers:

 1. A default tag table gives the baseline (p → paragraph,
    h1..h6 → heading(n), blockquote → quote(block), ...).
 2. An ordered disambiguation rule set, mapping CSS selectors to block
    types, is consulted next; the first matching rule wins and overrides
    the default. This is how a pull quote is told apart from a block
    quote when both render from the same tag and differ only by class
    name.

The rule set is supplied externally per project; this package holds no
project-specific class-name assumptions. When no rule matches, the
default stands and the caller preserves the element's class list under
an audit key so no classification signal is lost.
*/
package classify

import (
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/rohmanhakim/richtext-converter/internal/document"
	"golang.org/x/net/html"
)

// Rule is one ordered disambiguation entry: a CSS selector predicate
// over the element (tag, classes, arbitrary attributes) and the block
// type it resolves to.
type Rule struct {
	Selector string             `json:"selector"`
	Type     document.BlockType `json:"type"`
	Attrs    map[string]string  `json:"attrs,omitempty"`
}

type compiledRule struct {
	rule     Rule
	selector cascadia.Selector
}

type RuleSet struct {
	compiled []compiledRule
}

// NewRuleSet compiles the disambiguation rules. A selector that does
// not parse is a configuration error surfaced immediately rather than
// a silent no-op at conversion time.
func NewRuleSet(rules []Rule) (RuleSet, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		sel, err := cascadia.Compile(r.Selector)
		if err != nil {
			return RuleSet{}, &ClassifyError{
				Message: "selector " + strconv.Quote(r.Selector) + ": " + err.Error(),
				Cause:   ErrCauseBadSelector,
			}
		}
		compiled = append(compiled, compiledRule{rule: r, selector: sel})
	}
	return RuleSet{compiled: compiled}, nil
}

// Classification is the outcome for one element.
type Classification struct {
	Type document.BlockType
	// Attrs are the typed attributes classification itself contributes
	// (heading level, quote kind, list order, rule-declared attrs).
	Attrs map[string]any
	// RuleMatched is true when a disambiguation rule fired. When false
	// and the element carries classes, the caller must preserve them
	// under the audit key.
	RuleMatched bool
	// Known is false when the tag has no default mapping; the element
	// converts to an unknown-preserved block and is reported as
	// unmapped.
	Known bool
}

// Classify resolves one block-level element. Rules are checked in
// declared order; the first match wins.
func (rs RuleSet) Classify(n *html.Node) Classification {
	for _, c := range rs.compiled {
		if c.selector.Match(n) {
			return Classification{
				Type:        c.rule.Type,
				Attrs:       typeRuleAttrs(c.rule.Attrs),
				RuleMatched: true,
				Known:       true,
			}
		}
	}
	return defaultClassification(n.Data)
}

func defaultClassification(tag string) Classification {
	tag = strings.ToLower(tag)
	switch tag {
	case "p":
		return known(document.BlockParagraph, nil)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(tag[1] - '0')
		return known(document.BlockHeading, map[string]any{document.AttrLevel: level})
	case "blockquote":
		return known(document.BlockQuote, map[string]any{document.AttrQuoteKind: document.QuoteKindBlock})
	case "table":
		return known(document.BlockTable, nil)
	case "img":
		return known(document.BlockImage, nil)
	case "hr":
		return known(document.BlockRule, nil)
	case "pre":
		return known(document.BlockCode, nil)
	case "ul":
		return known(document.BlockList, map[string]any{document.AttrOrdered: false})
	case "ol":
		return known(document.BlockList, map[string]any{document.AttrOrdered: true})
	case "li":
		return known(document.BlockListItem, nil)
	default:
		return Classification{
			Type:  document.BlockUnknown,
			Attrs: map[string]any{document.AttrTag: tag},
		}
	}
}

func known(t document.BlockType, attrs map[string]any) Classification {
	return Classification{Type: t, Attrs: attrs, Known: true}
}

// typeRuleAttrs converts rule-declared attribute strings to typed
// values: integers and booleans are recognized, everything else stays a
// string.
func typeRuleAttrs(attrs map[string]string) map[string]any {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if n, err := strconv.Atoi(v); err == nil {
			out[k] = n
			continue
		}
		if b, err := strconv.ParseBool(v); err == nil {
			out[k] = b
			continue
		}
		out[k] = v
	}
	return out
}
