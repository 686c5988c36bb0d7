package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/protodoc/protodoc/internal/proto"
)

// writeExample emits the tabbed example pane for a method: curl and raw
// HTTP tabs when an HTTP rule exists, and a Response tab when the output
// message resolves.
func (g *Generator) writeExample(b *strings.Builder, method proto.Method) {
	methodID := anchorFor(method.Name)
	hasHTTP := method.HTTPMethod != "" && method.HTTPPath != ""
	output := g.set.Registry().ResolveMessage(method.OutputType)

	if !hasHTTP && output == nil {
		return
	}

	b.WriteString(`<div class="example-section">` + "\n")
	b.WriteString("<h4>Example</h4>\n")
	b.WriteString(`<div class="tab-container">` + "\n")
	b.WriteString(`<div class="tab-nav">` + "\n")

	firstTab := true
	if hasHTTP {
		fmt.Fprintf(b, `<button class="tab-button %s" data-tab="curl-%s">curl</button>`+"\n", activeClass(firstTab), methodID)
		fmt.Fprintf(b, `<button class="tab-button" data-tab="http-%s">HTTP</button>`+"\n", methodID)
		firstTab = false
	}
	if output != nil {
		fmt.Fprintf(b, `<button class="tab-button %s" data-tab="response-%s">Response</button>`+"\n", activeClass(firstTab), methodID)
	}
	b.WriteString("</div>\n")

	b.WriteString(`<div class="tab-content">` + "\n")
	firstTab = true
	if hasHTTP {
		fmt.Fprintf(b, `<div class="tab-pane %s" id="curl-%s">`+"\n", activeClass(firstTab), methodID)
		g.writeCurlExample(b, method)
		b.WriteString("</div>\n")
		firstTab = false

		fmt.Fprintf(b, `<div class="tab-pane" id="http-%s">`+"\n", methodID)
		b.WriteString("<pre><code>")
		fmt.Fprintf(b, "%s %s\n", html.EscapeString(method.HTTPMethod), html.EscapeString(method.HTTPPath))
		b.WriteString("Content-Type: application/json\n")
		b.WriteString("Authorization: Bearer YOUR_API_KEY\n\n")
		if body := g.requestBody(method); body != "" {
			b.WriteString(html.EscapeString(body))
			b.WriteString("\n")
		}
		b.WriteString("</code></pre>\n</div>\n")
	}
	if output != nil {
		fmt.Fprintf(b, `<div class="tab-pane %s" id="response-%s">`+"\n", activeClass(firstTab), methodID)
		b.WriteString("<pre><code>")
		b.WriteString(html.EscapeString(g.set.ExampleJSON(output)))
		b.WriteString("\n</code></pre>\n</div>\n")
	}
	b.WriteString("</div>\n</div>\n</div>\n")
}

func activeClass(active bool) string {
	if active {
		return "active"
	}
	return ""
}

// requestBody returns the example JSON body for body-carrying methods.
func (g *Generator) requestBody(method proto.Method) string {
	switch method.HTTPMethod {
	case "POST", "PUT", "PATCH":
	default:
		return ""
	}
	input := g.set.Registry().ResolveMessage(method.InputType)
	if input == nil || len(input.Fields) == 0 {
		return ""
	}
	return g.set.ExampleJSON(input)
}

// writeCurlExample emits a copyable curl command for the method.
func (g *Generator) writeCurlExample(b *strings.Builder, method proto.Method) {
	parts := []string{"curl"}
	if method.HTTPMethod != "" && method.HTTPMethod != "GET" {
		parts = append(parts, "-X "+method.HTTPMethod)
	}
	parts = append(parts, fmt.Sprintf("%q", g.cfg.APIBaseURL+method.HTTPPath))
	parts = append(parts,
		`-H "Content-Type: application/json"`,
		`-H "Authorization: Bearer YOUR_API_KEY"`,
	)
	if body := g.requestBody(method); body != "" {
		// Escape single quotes for shell safety.
		escaped := strings.ReplaceAll(body, "'", `'"'"'`)
		parts = append(parts, "-d '"+escaped+"'")
	}

	command := joinCurl(parts)
	methodID := anchorFor(method.Name)

	b.WriteString(`<div class="code-block-container">` + "\n")
	fmt.Fprintf(b, `<button class="copy-button" data-copy-target="curl-code-%s" title="Copy curl command">Copy</button>`+"\n", methodID)
	fmt.Fprintf(b, `<pre><code id="curl-code-%s" data-curl-command="%s">`, methodID, html.EscapeString(command))
	b.WriteString(html.EscapeString(command))
	b.WriteString("</code></pre>\n</div>\n")
}

// joinCurl keeps simple GET requests on one line and folds longer commands
// with backslash continuations.
func joinCurl(parts []string) string {
	if len(parts) <= 3 {
		return strings.Join(parts, " ")
	}
	lines := []string{parts[0] + " \\"}
	for _, part := range parts[1 : len(parts)-1] {
		lines = append(lines, "  "+part+" \\")
	}
	lines = append(lines, "  "+parts[len(parts)-1])
	return strings.Join(lines, "\n")
}
