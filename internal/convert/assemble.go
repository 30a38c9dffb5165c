package convert

import (
	"strings"

	"github.com/rohmanhakim/richtext-converter/internal/document"
	"github.com/rohmanhakim/richtext-converter/internal/quarantine"
	"github.com/rohmanhakim/richtext-converter/internal/report"
	"golang.org/x/net/html"
)

// assembleBlock finalizes one closed block: merges fragmented runs,
// trims boundary whitespace, enforces the children invariant, and
// decides whether a degenerate empty block survives. The second return
// value is false when the block is dropped.
func (b *builder) assembleBlock(ob *openBlock) (document.Block, bool) {
	children := mergeAdjacentRuns(ob.children)

	if ob.typ != document.BlockCode {
		children = trimRunEdges(children)
	}

	if hasRuns(children) && !document.AllowsInline(ob.typ) {
		b.rec.RecordNormalization(report.EventMalformedNesting, nil,
			"bare inline content inside "+string(ob.typ)+" wrapped in a paragraph")
		children = wrapBareRuns(children)
	}

	blk := document.Block{Type: ob.typ, Attrs: ob.attrs, Children: children}

	if len(children) == 0 && blk.Attrs.IsZero() &&
		!document.IsVoid(ob.typ) && !b.conv.bundle.PreserveEmpty() {
		return document.Block{}, false
	}
	return blk, true
}

// mergeAdjacentRuns joins textually-adjacent runs whose canonical mark
// sets are identical, removing fragmentation artifacts of the walk.
func mergeAdjacentRuns(children []document.Node) []document.Node {
	if len(children) < 2 {
		return children
	}
	out := make([]document.Node, 0, len(children))
	for _, child := range children {
		run, isRun := child.(document.TextRun)
		if !isRun {
			out = append(out, child)
			continue
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(document.TextRun); ok && document.MarksEqual(prev.Marks, run.Marks) {
				prev.Text += run.Text
				out[len(out)-1] = prev
				continue
			}
		}
		out = append(out, run)
	}
	return out
}

// trimRunEdges strips whitespace from the leading edge of the first
// run and the trailing edge of the last, dropping runs that become
// empty. Interior whitespace is content and stays.
func trimRunEdges(children []document.Node) []document.Node {
	for len(children) > 0 {
		first, ok := children[0].(document.TextRun)
		if !ok {
			break
		}
		first.Text = strings.TrimLeft(first.Text, " \n")
		if first.Text == "" {
			children = children[1:]
			continue
		}
		children[0] = first
		break
	}
	for len(children) > 0 {
		last, ok := children[len(children)-1].(document.TextRun)
		if !ok {
			break
		}
		last.Text = strings.TrimRight(last.Text, " \n")
		if last.Text == "" {
			children = children[:len(children)-1]
			continue
		}
		children[len(children)-1] = last
		break
	}
	return children
}

func hasRuns(children []document.Node) bool {
	for _, c := range children {
		if _, ok := c.(document.TextRun); ok {
			return true
		}
	}
	return false
}

// wrapBareRuns folds each contiguous sequence of text runs into a
// paragraph block, so container blocks hold blocks only.
func wrapBareRuns(children []document.Node) []document.Node {
	out := make([]document.Node, 0, len(children))
	var pending []document.Node

	flush := func() {
		if len(pending) == 0 {
			return
		}
		out = append(out, document.Block{Type: document.BlockParagraph, Children: pending})
		pending = nil
	}

	for _, child := range children {
		if run, ok := child.(document.TextRun); ok {
			pending = append(pending, run)
			continue
		}
		flush()
		out = append(out, child)
	}
	flush()
	return out
}

// extractAttrs routes one block element's attributes: typed values and
// the extra bucket go onto the attribute map, event handlers go to
// quarantine, and the class list is preserved under the audit key
// whenever no disambiguation rule used it.
func (c Converter) extractAttrs(
	n *html.Node,
	path []int,
	consumed map[string]struct{},
	ruleMatched bool,
	rec report.AuditSink,
) (document.AttrMap, string, error) {
	ex := c.embeds.Extract(n, consumed)

	for _, h := range ex.Handlers {
		rec.RecordQuarantine(quarantine.CaptureAttr(h.Key, h.Val, path))
	}
	if len(ex.Handlers) > 0 && c.bundle.StrictQuarantine() {
		return document.AttrMap{}, "", &ConversionError{
			Message: "event handler attribute on <" + n.Data + ">",
			Cause:   ErrCauseStrictQuarantine,
		}
	}

	var am document.AttrMap
	for k, v := range ex.Typed {
		am.Set(k, v)
	}
	for k, v := range ex.Extra {
		am.SetExtra(k, v)
	}
	if !ruleMatched {
		if class := attrValue(n, "class"); class != "" {
			am.SetExtra("class", class)
		}
	}
	return am, ex.EmbedType, nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
