package walker_test

import (
	"fmt"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/rohmanhakim/richtext-converter/internal/walker"
)

// recordingSink logs every event as a compact string so tests can
// assert on the exact event sequence.
type recordingSink struct {
	events []string
	// skipTags lists tags the sink answers with SkipChildren.
	skipTags map[string]struct{}
	// failOn, when non-empty, makes EnterElement return an error for
	// that tag.
	failOn string
}

func (s *recordingSink) EnterElement(el walker.Element) (walker.Action, error) {
	if el.Tag == s.failOn {
		return walker.Descend, fmt.Errorf("sink rejected <%s>", el.Tag)
	}
	s.events = append(s.events, "enter:"+el.Tag)
	if _, ok := s.skipTags[el.Tag]; ok {
		return walker.SkipChildren, nil
	}
	return walker.Descend, nil
}

func (s *recordingSink) Text(text string, depth int) error {
	s.events = append(s.events, "text:"+text)
	return nil
}

func (s *recordingSink) ExitElement(el walker.Element) error {
	s.events = append(s.events, "exit:"+el.Tag)
	return nil
}

// parseFragment parses markup and returns the <body> element so walks
// start at real content instead of the synthesized html/head wrapper.
func parseFragment(t *testing.T, markup string) *html.Node {
	t.Helper()

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("failed to parse test markup: %v", err)
	}
	body := findTag(doc, "body")
	if body == nil {
		t.Fatal("parsed markup has no body element")
	}
	return body
}

func findTag(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}
