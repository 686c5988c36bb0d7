// Package render generates the static API reference page: sidebar
// navigation, per-method documentation with tabbed examples, and a flat
// section for referenced external types. The emitted markup is the DOM
// contract the navigation index builder and the embedded client script
// both rely on.
package render

import (
	"embed"
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/protodoc/protodoc/internal/config"
	"github.com/protodoc/protodoc/internal/docmodel"
	"github.com/protodoc/protodoc/internal/proto"
)

//go:embed templates
var templatesFS embed.FS

// Generator renders one DocSet into a self-contained HTML page.
type Generator struct {
	cfg config.DocsConfig
	set *docmodel.DocSet
}

// New creates a generator for the given docs configuration and model.
func New(cfg config.DocsConfig, set *docmodel.DocSet) *Generator {
	return &Generator{cfg: cfg, set: set}
}

// Page renders the complete HTML document.
func (g *Generator) Page() ([]byte, error) {
	head, err := g.renderHead()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(head)
	g.writeSidebar(&b)

	b.WriteString(`<main class="main-content">` + "\n")
	b.WriteString(`<div class="content-section">` + "\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(g.cfg.Title))
	if g.cfg.Description != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(g.cfg.Description))
	}
	b.WriteString("</div>\n")

	for _, svc := range g.set.Services {
		g.writeService(&b, svc)
	}
	g.writeTypesSection(&b)
	b.WriteString("</main>\n")

	footer, err := g.renderFooter()
	if err != nil {
		return nil, err
	}
	b.WriteString(footer)

	return []byte(b.String()), nil
}

func (g *Generator) renderHead() (string, error) {
	raw, err := templatesFS.ReadFile("templates/html_head.html")
	if err != nil {
		return "", fmt.Errorf("failed to load head template: %w", err)
	}
	styles, err := templatesFS.ReadFile("templates/styles.css")
	if err != nil {
		return "", fmt.Errorf("failed to load styles: %w", err)
	}
	tmpl, err := template.New("head").Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse head template: %w", err)
	}
	var b strings.Builder
	err = tmpl.Execute(&b, map[string]string{
		"Title":  html.EscapeString(g.cfg.Title),
		"Styles": string(styles),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render head template: %w", err)
	}
	return b.String(), nil
}

func (g *Generator) renderFooter() (string, error) {
	raw, err := templatesFS.ReadFile("templates/html_footer.html")
	if err != nil {
		return "", fmt.Errorf("failed to load footer template: %w", err)
	}
	script, err := templatesFS.ReadFile("templates/scripts.js")
	if err != nil {
		return "", fmt.Errorf("failed to load client script: %w", err)
	}
	tmpl, err := template.New("footer").Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse footer template: %w", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, map[string]string{"Script": string(script)}); err != nil {
		return "", fmt.Errorf("failed to render footer template: %w", err)
	}
	return b.String(), nil
}

// anchorFor returns the fragment id for a service or method name.
func anchorFor(name string) string { return strings.ToLower(name) }

// typeAnchor returns the fragment id for a referenced type.
func typeAnchor(simpleName string) string { return "ref-" + strings.ToLower(simpleName) }

var typeDisplay = map[string]string{
	"string": "string",
	"int32":  "integer",
	"int64":  "integer",
	"uint32": "integer",
	"uint64": "integer",
	"bool":   "boolean",
	"double": "number",
	"float":  "number",
	"bytes":  "string (base64)",
}

// formatType maps proto scalars to reader-friendly names and links
// referenced external types to their Types-section entry.
func (g *Generator) formatType(protoType string) string {
	base := strings.ToLower(proto.SimpleName(protoType))
	display := protoType
	if mapped, ok := typeDisplay[base]; ok {
		display = mapped
	}
	if g.set.IsExternal(protoType) && g.set.IsReferenced(protoType) {
		simple := proto.SimpleName(protoType)
		return fmt.Sprintf(`<a href="#%s">%s</a>`, typeAnchor(simple), html.EscapeString(simple))
	}
	return html.EscapeString(display)
}

// fieldType renders a field's type cell, wrapping repeated fields in Array<>.
func (g *Generator) fieldType(field proto.Field) string {
	inner := g.formatType(field.Type)
	if field.Label == "repeated" {
		return "Array&lt;" + inner + "&gt;"
	}
	return inner
}
