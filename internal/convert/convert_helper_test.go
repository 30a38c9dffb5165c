package convert_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/rohmanhakim/richtext-converter/internal/config"
	"github.com/rohmanhakim/richtext-converter/internal/convert"
	"github.com/rohmanhakim/richtext-converter/internal/document"
)

// defaultConverter builds a converter from the default bundle.
func defaultConverter(t *testing.T) convert.Converter {
	t.Helper()

	cfg, err := config.WithDefault().Build()
	require.NoError(t, err)
	conv, err := convert.New(cfg)
	require.NoError(t, err)
	return conv
}

// converterWith builds a converter from a customized bundle.
func converterWith(t *testing.T, customize func(*config.Bundle) *config.Bundle) convert.Converter {
	t.Helper()

	cfg, err := customize(config.WithDefault()).Build()
	require.NoError(t, err)
	conv, err := convert.New(cfg)
	require.NoError(t, err)
	return conv
}

// parseDoc parses markup the way the CLI does, yielding a full
// document tree whose body holds the content.
func parseDoc(t *testing.T, markup string) *html.Node {
	t.Helper()

	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

// mustConvert converts markup and requires success.
func mustConvert(t *testing.T, conv convert.Converter, markup string) convert.Result {
	t.Helper()

	res := conv.Convert(parseDoc(t, markup))
	require.Equal(t, convert.StatusSuccess, res.Status, "conversion failed: %v", res.Failure)
	require.NotNil(t, res.Document)
	return res
}

// onlyBlock requires the document to hold exactly one block and
// returns it.
func onlyBlock(t *testing.T, res convert.Result) document.Block {
	t.Helper()

	require.Len(t, res.Document.Blocks, 1)
	return res.Document.Blocks[0]
}

// mustRender serializes a tree back to markup, for asserting the
// converter left its input untouched.
func mustRender(t *testing.T, n *html.Node) string {
	t.Helper()

	var b strings.Builder
	require.NoError(t, html.Render(&b, n))
	return b.String()
}

// renderCanonical writes converted blocks back out as the most direct
// markup expressing them, so tests can feed the converter its own
// output. Only block types and mark kinds with an obvious tag form are
// supported; anything else fails the test.
func renderCanonical(t *testing.T, doc *document.Document) string {
	t.Helper()

	var b strings.Builder
	for _, blk := range doc.Blocks {
		renderCanonicalBlock(t, &b, blk)
	}
	return b.String()
}

func renderCanonicalBlock(t *testing.T, b *strings.Builder, blk document.Block) {
	t.Helper()

	tag := ""
	consumed := map[string]struct{}{}
	switch blk.Type {
	case document.BlockParagraph:
		tag = "p"
	case document.BlockHeading:
		tag = fmt.Sprintf("h%d", blk.Attrs.Int(document.AttrLevel))
		consumed[document.AttrLevel] = struct{}{}
	case document.BlockQuote:
		require.Equal(t, document.QuoteKindBlock, blk.Attrs.String(document.AttrQuoteKind),
			"only the default quote kind has a bare tag form")
		tag = "blockquote"
		consumed[document.AttrQuoteKind] = struct{}{}
	case document.BlockList:
		tag = "ul"
		if ordered, _ := blk.Attrs.Value(document.AttrOrdered); ordered == true {
			tag = "ol"
		}
		consumed[document.AttrOrdered] = struct{}{}
	case document.BlockListItem:
		tag = "li"
	case document.BlockCode:
		tag = "pre"
	default:
		t.Fatalf("no markup form for block type %q", blk.Type)
	}

	b.WriteString("<" + tag)
	for k, v := range blk.Attrs.Values() {
		if _, ok := consumed[k]; ok {
			continue
		}
		fmt.Fprintf(b, ` %s="%v"`, k, v)
	}
	for k, v := range blk.Attrs.Extras() {
		fmt.Fprintf(b, ` %s="%v"`, k, v)
	}
	b.WriteString(">")
	for _, child := range blk.Children {
		switch n := child.(type) {
		case document.TextRun:
			renderCanonicalRun(t, b, n)
		case document.Block:
			renderCanonicalBlock(t, b, n)
		}
	}
	b.WriteString("</" + tag + ">")
}

func renderCanonicalRun(t *testing.T, b *strings.Builder, run document.TextRun) {
	t.Helper()

	var closers []string
	for _, m := range run.Marks {
		switch m.Kind {
		case "bold":
			b.WriteString("<b>")
			closers = append(closers, "</b>")
		case "italic":
			b.WriteString("<i>")
			closers = append(closers, "</i>")
		case "code":
			b.WriteString("<code>")
			closers = append(closers, "</code>")
		case "link":
			fmt.Fprintf(b, `<a href="%s">`, m.Attrs["href"])
			closers = append(closers, "</a>")
		default:
			t.Fatalf("no markup form for mark kind %q", m.Kind)
		}
	}
	b.WriteString(html.EscapeString(run.Text))
	for i := len(closers) - 1; i >= 0; i-- {
		b.WriteString(closers[i])
	}
}

// runAt requires child i of the block to be a text run.
func runAt(t *testing.T, blk document.Block, i int) document.TextRun {
	t.Helper()

	require.Greater(t, len(blk.Children), i)
	run, ok := blk.Children[i].(document.TextRun)
	require.True(t, ok, "child %d is %T, not a text run", i, blk.Children[i])
	return run
}
