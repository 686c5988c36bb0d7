package render

import (
	"strings"

	"github.com/yuin/goldmark"
)

// renderComment converts a proto doc comment to HTML. Comments are treated
// as markdown; goldmark escapes raw HTML in the source text, so hostile
// comment content cannot inject markup into the page.
func (g *Generator) renderComment(comment string) string {
	var b strings.Builder
	if err := goldmark.New().Convert([]byte(comment), &b); err != nil {
		// Fall back to the raw text inside a paragraph on conversion failure.
		return "<p>" + strings.ReplaceAll(comment, "<", "&lt;") + "</p>\n"
	}
	return b.String()
}
