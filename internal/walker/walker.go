/*
Package walker performs the depth-first traversal of a parsed markup
tree.

Responsibilities
  - Emit a typed event stream: enter-element, text, exit-element
  - Collapse whitespace runs in text per markup normalization rules
    (preserved verbatim inside <pre>)
  - Strip non-content nodes: comments, doctypes, processing instructions
  - Enforce the configured maximum nesting depth

The walker is the only component that touches traversal order; every
consumer above it sees the same deterministic event sequence.
*/
package walker

import (
	"strings"

	"golang.org/x/net/html"
)

// Action is a sink's answer to an enter-element event.
type Action int

const (
	// Descend continues into the element's children.
	Descend Action = iota
	// SkipChildren claims the whole subtree: the walker emits no
	// further event for it, not even the exit-element.
	SkipChildren
)

// Element is the node metadata attached to enter/exit events.
type Element struct {
	Node *html.Node
	Tag  string
	// Depth is the element nesting depth relative to the walk root.
	Depth int
	// Path is the child-index trail from the walk root, identifying
	// the element's position for audit reports.
	Path []int
}

// Attr returns the value of the named attribute.
func (e Element) Attr(key string) (string, bool) {
	for _, a := range e.Node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrMap copies the element attributes into a plain map, used for
// report samples.
func (e Element) AttrMap() map[string]string {
	if len(e.Node.Attr) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Node.Attr))
	for _, a := range e.Node.Attr {
		out[a.Key] = a.Val
	}
	return out
}

// Sink consumes the event stream.
// Any error returned from a sink method aborts the walk as-is.
type Sink interface {
	EnterElement(el Element) (Action, error)
	Text(text string, depth int) error
	ExitElement(el Element) error
}

type Param struct {
	// MaxDepth is the maximum element nesting depth. Exceeding it is a
	// structural limit violation: the walk stops and the document
	// conversion must fail rather than emit a truncated tree.
	MaxDepth int
}

const DefaultMaxDepth = 64

func DefaultParam() Param {
	return Param{MaxDepth: DefaultMaxDepth}
}

// Walk traverses one subtree depth-first. A document root walks its
// children; an element root is itself entered first.
func Walk(root *html.Node, param Param, sink Sink) error {
	if root == nil {
		return &WalkError{
			Message: "cannot walk nil node",
			Cause:   ErrCauseNilInput,
		}
	}
	if param.MaxDepth <= 0 {
		param.MaxDepth = DefaultMaxDepth
	}

	w := walker{param: param, sink: sink}

	if root.Type == html.DocumentNode {
		i := 0
		for c := root.FirstChild; c != nil; c = c.NextSibling {
			if err := w.visit(c, 0, []int{i}, 0); err != nil {
				return err
			}
			i++
		}
		return nil
	}
	return w.visit(root, 0, []int{0}, 0)
}

type walker struct {
	param Param
	sink  Sink
}

// visit dispatches one node. preserve counts open ancestors whose text
// content must keep its whitespace verbatim.
func (w walker) visit(n *html.Node, depth int, path []int, preserve int) error {
	switch n.Type {
	case html.TextNode:
		text := n.Data
		if preserve == 0 {
			text = CollapseWhitespace(text)
		}
		if text == "" {
			return nil
		}
		return w.sink.Text(text, depth)

	case html.ElementNode:
		if depth > w.param.MaxDepth {
			return &WalkError{
				Message: "element nesting exceeds configured maximum depth",
				Cause:   ErrCauseDepthExceeded,
			}
		}

		el := Element{Node: n, Tag: n.Data, Depth: depth, Path: path}
		action, err := w.sink.EnterElement(el)
		if err != nil {
			return err
		}
		if action == SkipChildren {
			return nil
		}

		if preservesWhitespace(n.Data) {
			preserve++
		}

		i := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			childPath := append(append([]int(nil), path...), i)
			if err := w.visit(c, depth+1, childPath, preserve); err != nil {
				return err
			}
			i++
		}
		return w.sink.ExitElement(el)

	default:
		// Comments, doctypes and raw nodes are non-content.
		return nil
	}
}

func preservesWhitespace(tag string) bool {
	return tag == "pre" || tag == "textarea"
}

// CollapseWhitespace reduces every run of markup whitespace to a single
// space. Whitespace-only input collapses to a single space, never to
// the empty string; dropping it is an assembly decision, not a
// traversal one.
func CollapseWhitespace(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if isMarkupSpace(r) {
			inRun = true
			continue
		}
		if inRun {
			// Leading and trailing runs keep one space too: they still
			// separate this text from adjacent inline siblings.
			b.WriteByte(' ')
			inRun = false
		}
		b.WriteRune(r)
	}
	if inRun {
		b.WriteByte(' ')
	}
	return b.String()
}

func isMarkupSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
