// Package linkverify checks the generated page for dangling fragment
// links: every sidebar href="#x" must resolve to an element with id="x"
// in the same document.
package linkverify

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// DanglingAnchor is a sidebar link whose target id does not exist.
type DanglingAnchor struct {
	Anchor string // fragment without the leading #
	Text   string // link text
}

// Verify parses the page and returns all dangling sidebar anchors.
// A page with no fragment links verifies trivially.
func Verify(r io.Reader) ([]DanglingAnchor, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	ids := map[string]bool{}
	type ref struct {
		anchor string
		text   string
	}
	var refs []ref

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				switch {
				case attr.Key == "id":
					ids[attr.Val] = true
				case attr.Key == "href" && strings.HasPrefix(attr.Val, "#") && len(attr.Val) > 1:
					refs = append(refs, ref{anchor: attr.Val[1:], text: nodeText(n)})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var dangling []DanglingAnchor
	for _, r := range refs {
		if !ids[r.anchor] {
			dangling = append(dangling, DanglingAnchor{Anchor: r.anchor, Text: r.text})
		}
	}
	return dangling, nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(b.String())
}
