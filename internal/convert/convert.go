/*
Package convert transforms a parsed markup tree into the canonical
rich-text document.

Design Principles
- Semantic fidelity over visual fidelity
- Pure, synchronous, all-or-nothing per document
- Every recovery leaves an audit trail; information loss is never silent
- Rule tables are configuration, not code branches

The converter folds the walker's event stream through the mark
resolver, the block classifier, the attribute extractor and the script
quarantine, re-entering itself for table cells so inline semantics are
identical wherever content appears.
*/
package convert

import (
	"errors"

	"github.com/rohmanhakim/richtext-converter/internal/attrs"
	"github.com/rohmanhakim/richtext-converter/internal/classify"
	"github.com/rohmanhakim/richtext-converter/internal/config"
	"github.com/rohmanhakim/richtext-converter/internal/document"
	"github.com/rohmanhakim/richtext-converter/internal/marks"
	"github.com/rohmanhakim/richtext-converter/internal/quarantine"
	"github.com/rohmanhakim/richtext-converter/internal/report"
	"github.com/rohmanhakim/richtext-converter/pkg/failure"
	"golang.org/x/net/html"
)

// Converter holds the compiled rule tables for one configuration
// bundle. It is immutable and safe for concurrent use; any number of
// documents may be converted with the same Converter.
type Converter struct {
	bundle     config.Bundle
	markRules  marks.RuleSet
	blockRules classify.RuleSet
	embeds     attrs.Registry
	denylist   quarantine.Denylist
}

func New(bundle config.Bundle) (Converter, error) {
	blockRules, err := classify.NewRuleSet(bundle.BlockRules())
	if err != nil {
		return Converter{}, err
	}
	return Converter{
		bundle:     bundle,
		markRules:  marks.NewRuleSet(bundle.MarkRules()),
		blockRules: blockRules,
		embeds:     attrs.NewRegistry(bundle.EmbedSchemas()),
		denylist:   quarantine.NewDenylist(bundle.ScriptDenylist()),
	}, nil
}

// Convert transforms one parsed document or fragment. The input tree
// is read, never mutated; all output entities are created fresh and
// belong exclusively to the returned Result.
func (c Converter) Convert(root *html.Node) Result {
	rec := report.NewRecorder()

	if root == nil {
		return failureResult(rec, &ConversionError{
			Message: "cannot convert nil markup tree",
			Cause:   ErrCauseNilInput,
		})
	}

	blocks, err := c.convertFragment(conversionRoots(root), c.bundle.MaxDepth(), rec)
	if err != nil {
		return failureResult(rec, asClassified(err))
	}

	return successResult(&document.Document{Blocks: blocks}, rec)
}

// convertFragment is the block-conversion entry point shared by the
// top-level walk and the table converter: each table cell re-enters
// here so nested content converts with identical semantics.
func (c Converter) convertFragment(nodes []*html.Node, depthBudget int, rec report.AuditSink) ([]document.Block, error) {
	if depthBudget <= 0 {
		return nil, &ConversionError{
			Message: "depth budget exhausted",
			Cause:   ErrCauseStructuralLimit,
		}
	}

	b := newBuilder(c, rec, depthBudget)
	for _, n := range nodes {
		if err := walkNode(n, depthBudget, b); err != nil {
			return nil, err
		}
	}
	return b.finish(), nil
}

// conversionRoots unwraps a full document to the content under <body>;
// fragments convert as-is.
func conversionRoots(root *html.Node) []*html.Node {
	if body := findElement(root, "body"); body != nil {
		return childNodes(body)
	}
	if root.Type == html.DocumentNode {
		return childNodes(root)
	}
	return []*html.Node{root}
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func asClassified(err error) failure.ClassifiedError {
	var classified failure.ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}
	return &ConversionError{Message: err.Error(), Cause: ErrCauseStructuralLimit}
}
