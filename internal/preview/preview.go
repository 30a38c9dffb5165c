/*
Package preview renders the quarantine-cleaned markup to GitHub-
Flavored Markdown so an operator can review conversion and quarantine
decisions side by side with the canonical document.

The preview is an audit aid, never an output format of the converter
core: it shares the denylist with the conversion so nothing quarantined
can leak into the preview either.
*/
package preview

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rohmanhakim/richtext-converter/internal/quarantine"
	"golang.org/x/net/html"
)

type LinkKind string

const (
	KindNavigation LinkKind = "navigation"
	KindImage      LinkKind = "image"
	KindAnchor     LinkKind = "anchor"
)

// LinkRef is one outbound reference found in the previewed markup, in
// document order.
type LinkRef struct {
	Raw  string   `json:"raw"`
	Kind LinkKind `json:"kind"`
}

// Markdown renders the subtree to markdown after removing every
// denied element. The input tree is cloned first and never mutated.
func Markdown(root *html.Node, denylist quarantine.Denylist) ([]byte, []LinkRef, error) {
	if root == nil {
		return nil, nil, &PreviewError{
			Message: "cannot preview nil HTML node",
			Cause:   ErrCauseRenderFailure,
		}
	}

	cleaned := cloneWithoutDenied(root, denylist)

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	md, err := conv.ConvertNode(cleaned)
	if err != nil {
		return nil, nil, &PreviewError{
			Message: err.Error(),
			Cause:   ErrCauseRenderFailure,
		}
	}

	return md, extractLinkRefs(cleaned), nil
}

// HTML renders preview markdown back to HTML for browser-based
// side-by-side diffing.
func HTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return markdown.ToHTML(md, p, renderer)
}

// cloneWithoutDenied deep-copies the subtree, dropping denied elements
// and their descendants.
func cloneWithoutDenied(n *html.Node, denylist quarantine.Denylist) *html.Node {
	clone := &html.Node{
		Type:     n.Type,
		DataAtom: n.DataAtom,
		Data:     n.Data,
		Attr:     append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && denylist.Denied(c.Data) {
			continue
		}
		clone.AppendChild(cloneWithoutDenied(c, denylist))
	}
	return clone
}

// extractLinkRefs walks the cleaned DOM and extracts all link
// references: <a href> and <img src>, in document order.
func extractLinkRefs(root *html.Node) []LinkRef {
	var linkRefs []LinkRef

	doc := goquery.NewDocumentFromNode(root)
	doc.Find("a[href], img[src]").Each(func(i int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "a":
			if href, exists := s.Attr("href"); exists {
				linkRefs = append(linkRefs, toLinkRef("a", href))
			}
		case "img":
			if src, exists := s.Attr("src"); exists {
				linkRefs = append(linkRefs, toLinkRef("img", src))
			}
		}
	})

	return linkRefs
}

// toLinkRef classifies a reference by tag and URL pattern.
func toLinkRef(tagName, raw string) LinkRef {
	var kind LinkKind
	switch tagName {
	case "img":
		kind = KindImage
	case "a":
		if strings.HasPrefix(raw, "#") {
			kind = KindAnchor
		} else {
			kind = KindNavigation
		}
	default:
		kind = KindNavigation
	}
	return LinkRef{Raw: raw, Kind: kind}
}
