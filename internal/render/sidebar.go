package render

import (
	"fmt"
	"html"
	"strings"
)

// writeSidebar emits the navigation tree. The structure is a fixed
// convention consumed by the navtree builder and the client script:
// service containers (li.nav-item) hold a nav-link label and a nav-sublist
// of method nav-sublinks; a "Types" header precedes a flat list of type
// nav-sublinks.
func (g *Generator) writeSidebar(b *strings.Builder) {
	b.WriteString(`<nav class="sidebar">` + "\n")
	b.WriteString(`<div class="sidebar-content">` + "\n")
	b.WriteString(`<div class="search-container">` + "\n")
	b.WriteString(`<input type="text" class="search-input" id="searchInput" placeholder="Search services and types...">` + "\n")
	b.WriteString(`<div class="search-results" id="searchResults"></div>` + "\n")
	b.WriteString("</div>\n")

	b.WriteString("<h2>Services</h2>\n")
	b.WriteString(`<ul class="nav-list">` + "\n")
	for _, svc := range g.set.Services {
		b.WriteString(`<li class="nav-item">` + "\n")
		fmt.Fprintf(b, `<a href="#%s" class="nav-link">%s</a>`+"\n", anchorFor(svc.Name), html.EscapeString(svc.Name))
		b.WriteString(`<ul class="nav-sublist">` + "\n")
		for _, method := range svc.Methods {
			fmt.Fprintf(b, `<li><a href="#%s" class="nav-sublink">%s</a></li>`+"\n", anchorFor(method.Name), html.EscapeString(method.Name))
		}
		b.WriteString("</ul>\n</li>\n")
	}
	b.WriteString("</ul>\n")

	if len(g.set.Types) > 0 {
		b.WriteString("<h2>Types</h2>\n")
		b.WriteString(`<ul class="nav-list">` + "\n")
		for _, rt := range g.set.Types {
			fmt.Fprintf(b, `<li><a href="#%s" class="nav-sublink">%s</a></li>`+"\n", typeAnchor(rt.SimpleName), html.EscapeString(rt.SimpleName))
		}
		b.WriteString("</ul>\n")
	}

	b.WriteString("</div>\n</nav>\n")
}
