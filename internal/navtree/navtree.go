// Package navtree builds an ordered navigation index from the rendered
// sidebar markup. The index is the immutable input of the search filter
// engine: one entry per sidebar label, in document order, with methods
// carrying the text of their owning service.
package navtree

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Kind classifies a navigation entry.
type Kind int

const (
	KindService Kind = iota
	KindMethod
	KindType
)

func (k Kind) String() string {
	switch k {
	case KindService:
		return "service"
	case KindMethod:
		return "method"
	case KindType:
		return "type"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind as its string name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON decodes a kind from its string name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "service":
		*k = KindService
	case "method":
		*k = KindMethod
	case "type":
		*k = KindType
	default:
		return fmt.Errorf("unknown entry kind %s", data)
	}
	return nil
}

// Entry is one sidebar label.
type Entry struct {
	Text          string `json:"text"`
	Kind          Kind   `json:"kind"`
	ParentService string `json:"parent_service,omitempty"`
	Anchor        string `json:"anchor,omitempty"`
}

// Index is the ordered list of navigation entries for one page.
// It is immutable after Build returns.
type Index struct {
	entries []Entry
}

// Entries returns the entries in document order. Callers must not mutate
// the returned slice.
func (i *Index) Entries() []Entry { return i.entries }

// Len returns the number of entries.
func (i *Index) Len() int { return len(i.entries) }

// Build scans the rendered page once and collects the sidebar entries.
// A page without a sidebar, or a sidebar without service or type sections,
// yields an empty index rather than an error.
func Build(r io.Reader) (*Index, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	idx := &Index{}
	sidebar := findByClass(doc, "nav", "sidebar")
	if sidebar == nil {
		return idx, nil
	}

	var currentService string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "nav-link"):
				text := nodeText(n)
				currentService = text
				idx.entries = append(idx.entries, Entry{
					Text:   text,
					Kind:   KindService,
					Anchor: anchorOf(n),
				})
			case hasClass(n, "nav-sublink"):
				entry := Entry{
					Text:   nodeText(n),
					Anchor: anchorOf(n),
				}
				if insideNavItem(n) {
					entry.Kind = KindMethod
					entry.ParentService = currentService
				} else {
					entry.Kind = KindType
				}
				idx.entries = append(idx.entries, entry)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(sidebar)
	return idx, nil
}

// insideNavItem reports whether the link sits under a service container.
// Type links live in a flat list outside any nav-item.
func insideNavItem(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && hasClass(p, "nav-item") {
			return true
		}
	}
	return false
}

func findByClass(n *html.Node, tag, class string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, tag, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func anchorOf(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			return strings.TrimPrefix(attr.Val, "#")
		}
	}
	return ""
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
