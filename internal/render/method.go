package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/protodoc/protodoc/internal/proto"
)

func (g *Generator) writeService(b *strings.Builder, svc *proto.Service) {
	b.WriteString(`<div class="content-section">` + "\n")
	fmt.Fprintf(b, `<h2 id="%s">%s</h2>`+"\n", anchorFor(svc.Name), html.EscapeString(svc.Name))
	if svc.Comment != "" {
		b.WriteString(g.renderComment(svc.Comment))
	}
	for _, method := range svc.Methods {
		g.writeMethod(b, svc, method)
	}
	b.WriteString("</div>\n")
}

func (g *Generator) writeMethod(b *strings.Builder, svc *proto.Service, method proto.Method) {
	anchor := anchorFor(method.Name)

	b.WriteString(`<div class="method-header">` + "\n")
	fmt.Fprintf(b, `<h3 id="%s">%s</h3>`+"\n", anchor, html.EscapeString(method.Name))
	fmt.Fprintf(b, `<button class="link-button" data-anchor="%s" title="Copy link to this method">#</button>`+"\n", anchor)
	b.WriteString("</div>\n")

	if pkg := g.set.Registry().Packages[svc.SourceFile]; pkg != "" {
		fmt.Fprintf(b, `<p><em>From package:</em> <code>%s</code></p>`+"\n", html.EscapeString(pkg))
	}
	if method.Comment != "" {
		b.WriteString(g.renderComment(method.Comment))
	}

	if method.HTTPMethod != "" && method.HTTPPath != "" {
		b.WriteString(`<div class="method-endpoint">` + "\n")
		fmt.Fprintf(b, "<code>%s %s</code>\n", html.EscapeString(method.HTTPMethod), html.EscapeString(method.HTTPPath))
		b.WriteString("</div>\n")
	}

	if input := g.set.Registry().ResolveMessage(method.InputType); input != nil {
		b.WriteString("<h4>Request</h4>\n")
		g.writeMessageTable(b, input, true)
	}
	if output := g.set.Registry().ResolveMessage(method.OutputType); output != nil {
		b.WriteString("<h4>Response</h4>\n")
		g.writeMessageTable(b, output, false)
	}

	g.writeExample(b, method)
	b.WriteString(`<div class="method-divider"></div>` + "\n")
}

// writeMessageTable emits a parameter table for a request or response message.
func (g *Generator) writeMessageTable(b *strings.Builder, msg *proto.Message, isRequest bool) {
	if len(msg.Fields) == 0 {
		if isRequest {
			b.WriteString("<p>No parameters required.</p>\n")
		} else {
			b.WriteString("<p>Empty response.</p>\n")
		}
		return
	}

	b.WriteString("<table>\n<thead>\n<tr>\n<th>Parameter</th>\n<th>Type</th>\n<th>Required</th>\n<th>Description</th>\n</tr>\n</thead>\n<tbody>\n")
	for _, field := range msg.Fields {
		if field.Deprecated {
			continue
		}
		required := "No"
		if field.Label == "required" {
			required = "Yes"
		}
		description := field.Comment
		if description == "" {
			description = "No description available"
		}
		b.WriteString("<tr>\n")
		fmt.Fprintf(b, "<td><code>%s</code></td>\n", html.EscapeString(field.Name))
		fmt.Fprintf(b, "<td>%s</td>\n", g.fieldType(field))
		fmt.Fprintf(b, "<td>%s</td>\n", required)
		fmt.Fprintf(b, "<td>%s</td>\n", html.EscapeString(description))
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
}
