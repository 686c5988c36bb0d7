package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/protodoc/protodoc/internal/proto"
)

// writeTypesSection emits the flat list of referenced external types.
func (g *Generator) writeTypesSection(b *strings.Builder) {
	if len(g.set.Types) == 0 {
		return
	}

	b.WriteString(`<div class="content-section">` + "\n")
	b.WriteString(`<h2 id="types">Types</h2>` + "\n")
	b.WriteString("<p>This section documents all types from external packages used in the API.</p>\n")

	for _, rt := range g.set.Types {
		anchor := typeAnchor(rt.SimpleName)
		b.WriteString(`<div class="type-header">` + "\n")
		fmt.Fprintf(b, `<h4 id="%s">%s</h4>`+"\n", anchor, html.EscapeString(rt.SimpleName))
		fmt.Fprintf(b, `<button class="link-button" data-anchor="%s" title="Copy link to this type">#</button>`+"\n", anchor)
		b.WriteString("</div>\n")
		fmt.Fprintf(b, `<p><em>From package:</em> <code>%s</code></p>`+"\n", html.EscapeString(rt.Package))

		switch {
		case rt.Message != nil:
			if rt.Message.Comment != "" {
				b.WriteString(g.renderComment(rt.Message.Comment))
			}
			g.writeTypeFields(b, rt.Message)
		case rt.Enum != nil:
			if rt.Enum.Comment != "" {
				b.WriteString(g.renderComment(rt.Enum.Comment))
			}
			g.writeEnumValues(b, rt.Enum)
		}
		b.WriteString(`<div class="type-divider"></div>` + "\n")
	}
	b.WriteString("</div>\n")
}

func (g *Generator) writeTypeFields(b *strings.Builder, msg *proto.Message) {
	if len(msg.Fields) == 0 {
		b.WriteString("<p>No fields defined.</p>\n")
		return
	}
	b.WriteString("<table>\n<thead>\n<tr>\n<th>Field</th>\n<th>Type</th>\n<th>Description</th>\n</tr>\n</thead>\n<tbody>\n")
	for _, field := range msg.Fields {
		if field.Deprecated {
			continue
		}
		description := field.Comment
		if description == "" {
			description = "No description available"
		}
		b.WriteString("<tr>\n")
		fmt.Fprintf(b, "<td><code>%s</code></td>\n", html.EscapeString(field.Name))
		fmt.Fprintf(b, "<td>%s</td>\n", g.fieldType(field))
		fmt.Fprintf(b, "<td>%s</td>\n", html.EscapeString(description))
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
}

func (g *Generator) writeEnumValues(b *strings.Builder, enum *proto.Enum) {
	if len(enum.Values) == 0 {
		b.WriteString("<p>No enum values defined.</p>\n")
		return
	}
	b.WriteString("<p><strong>Enum Values:</strong></p>\n")
	b.WriteString("<table>\n<thead>\n<tr>\n<th>Name</th>\n<th>Value</th>\n</tr>\n</thead>\n<tbody>\n")
	for _, value := range enum.Values {
		b.WriteString("<tr>\n")
		fmt.Fprintf(b, "<td><code>%s</code></td>\n", html.EscapeString(value.Name))
		fmt.Fprintf(b, "<td>%d</td>\n", value.Number)
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
}
