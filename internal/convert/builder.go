package convert

import (
	"strings"

	"github.com/rohmanhakim/richtext-converter/internal/document"
	"github.com/rohmanhakim/richtext-converter/internal/quarantine"
	"github.com/rohmanhakim/richtext-converter/internal/report"
	"github.com/rohmanhakim/richtext-converter/internal/walker"
	"golang.org/x/net/html"
)

func walkNode(n *html.Node, depthBudget int, sink walker.Sink) error {
	return walker.Walk(n, walker.Param{MaxDepth: depthBudget}, sink)
}

// openBlock is one block being assembled. node is nil for synthetic
// blocks opened to wrap stray inline content.
type openBlock struct {
	node      *html.Node
	typ       document.BlockType
	attrs     document.AttrMap
	children  []document.Node
	synthetic bool
}

// builder consumes walker events and assembles blocks. One builder
// serves exactly one fragment conversion.
type builder struct {
	conv   Converter
	rec    report.AuditSink
	budget int

	stack  []*openBlock
	inline []*html.Node
	done   []document.Block
}

func newBuilder(conv Converter, rec report.AuditSink, budget int) *builder {
	return &builder{conv: conv, rec: rec, budget: budget}
}

// Compile-time interface check
var _ walker.Sink = (*builder)(nil)

func (b *builder) EnterElement(el walker.Element) (walker.Action, error) {
	tag := el.Tag

	if b.conv.denylist.Denied(tag) {
		b.rec.RecordQuarantine(quarantine.CaptureNode(el.Node, el.Path, quarantine.ReasonDeniedTag))
		if b.conv.bundle.StrictQuarantine() {
			return walker.SkipChildren, &ConversionError{
				Message: "denied tag <" + tag + ">",
				Cause:   ErrCauseStrictQuarantine,
			}
		}
		return walker.SkipChildren, nil
	}

	if tag == "br" {
		b.appendLineBreak()
		return walker.SkipChildren, nil
	}

	if b.isInline(tag) {
		if err := b.quarantineHandlers(el.Node, el.Path); err != nil {
			return walker.SkipChildren, err
		}
		if !b.conv.markRules.Recognizes(el.Node) {
			b.rec.RecordUnmappedTag(tag, el.AttrMap(), report.EventUnmappedInline)
		}
		b.inline = append(b.inline, el.Node)
		return walker.Descend, nil
	}

	if tag == "table" {
		b.closeSyntheticTop()
		blk, err := b.conv.convertTable(el, b.budget-el.Depth, b.rec)
		if err != nil {
			return walker.SkipChildren, err
		}
		b.place(blk)
		return walker.SkipChildren, nil
	}

	// Block-level element.
	b.closeSyntheticTop()

	cls := b.conv.blockRules.Classify(el.Node)
	if !cls.Known {
		b.rec.RecordUnmappedTag(tag, el.AttrMap(), report.EventUnmappedBlock)
	}

	attrMap, embedType, err := b.conv.extractAttrs(el.Node, el.Path, blockConsumed, cls.RuleMatched, b.rec)
	if err != nil {
		return walker.SkipChildren, err
	}

	typ := cls.Type
	if embedType != "" && !cls.RuleMatched {
		// A registered embed schema claims this element unless a
		// project rule already decided otherwise.
		typ = document.BlockEmbed
		attrMap.Set(document.AttrEmbedType, embedType)
	}
	for k, v := range cls.Attrs {
		attrMap.Set(k, v)
	}

	b.stack = append(b.stack, &openBlock{node: el.Node, typ: typ, attrs: attrMap})
	return walker.Descend, nil
}

func (b *builder) Text(text string, depth int) error {
	// Inter-block whitespace is a traversal artifact, not content.
	if strings.TrimSpace(text) == "" && !b.inInlineFlow() {
		return nil
	}

	if len(b.stack) == 0 {
		// Inline content with no enclosing block: auto-wrap in a
		// default block rather than dropping it.
		b.openSyntheticParagraph()
	}

	resolved, _ := b.conv.markRules.Resolve(b.inline)
	top := b.stack[len(b.stack)-1]
	top.children = append(top.children, document.TextRun{Text: text, Marks: resolved})
	return nil
}

func (b *builder) ExitElement(el walker.Element) error {
	if len(b.inline) > 0 && b.inline[len(b.inline)-1] == el.Node {
		b.inline = b.inline[:len(b.inline)-1]
		return nil
	}

	for len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		matched := top.node == el.Node
		b.closeTop()
		if matched {
			return nil
		}
	}
	return nil
}

// finish closes any block left open (synthetic wrappers at fragment
// end) and returns the assembled top-level blocks.
func (b *builder) finish() []document.Block {
	for len(b.stack) > 0 {
		b.closeTop()
	}
	return b.done
}

// inInlineFlow reports whether whitespace-only text is significant
// here: inside an open inline element, or directly inside a block that
// carries inline runs.
func (b *builder) inInlineFlow() bool {
	if len(b.inline) > 0 {
		return true
	}
	if len(b.stack) == 0 {
		return false
	}
	top := b.stack[len(b.stack)-1]
	return document.AllowsInline(top.typ) && len(top.children) > 0
}

func (b *builder) isInline(tag string) bool {
	return b.conv.markRules.Covers(tag) || builtinInline(tag)
}

func (b *builder) appendLineBreak() {
	if len(b.stack) == 0 {
		// A line break with no enclosing block is stray inline content,
		// handled the same way stray text is.
		b.openSyntheticParagraph()
	}
	resolved, _ := b.conv.markRules.Resolve(b.inline)
	top := b.stack[len(b.stack)-1]
	top.children = append(top.children, document.TextRun{Text: "\n", Marks: resolved})
}

func (b *builder) openSyntheticParagraph() {
	b.rec.RecordNormalization(report.EventMalformedNesting, nil, "inline content without an enclosing block wrapped in a paragraph")
	b.stack = append(b.stack, &openBlock{typ: document.BlockParagraph, synthetic: true})
}

func (b *builder) closeSyntheticTop() {
	if len(b.stack) > 0 && b.stack[len(b.stack)-1].synthetic {
		b.closeTop()
	}
}

func (b *builder) closeTop() {
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]

	blk, keep := b.assembleBlock(top)
	if !keep {
		return
	}
	b.place(blk)
}

func (b *builder) place(blk document.Block) {
	if len(b.stack) > 0 {
		parent := b.stack[len(b.stack)-1]
		parent.children = append(parent.children, blk)
		return
	}
	b.done = append(b.done, blk)
}

func (b *builder) quarantineHandlers(n *html.Node, path []int) error {
	found := false
	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "on") && len(a.Key) > 2 {
			b.rec.RecordQuarantine(quarantine.CaptureAttr(a.Key, a.Val, path))
			found = true
		}
	}
	if found && b.conv.bundle.StrictQuarantine() {
		return &ConversionError{
			Message: "event handler attribute on <" + n.Data + ">",
			Cause:   ErrCauseStrictQuarantine,
		}
	}
	return nil
}

// blockConsumed names the attributes the builder accounts for itself
// on block elements: class feeds classification (and the audit key
// when unused).
var blockConsumed = map[string]struct{}{"class": {}}

// builtinInline covers phrasing-content tags that carry no default
// mark rule. Their text is retained unformatted; classification as a
// block would fracture the surrounding run.
func builtinInline(tag string) bool {
	switch tag {
	case "span", "q", "cite", "dfn", "kbd", "samp", "var",
		"small", "big", "font", "tt", "time", "wbr",
		"bdi", "bdo", "ins", "ruby", "rt", "rp", "label", "output":
		return true
	}
	return false
}
