package navtree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sidebarFixture = `<!DOCTYPE html>
<html><body>
<nav class="sidebar">
<div class="sidebar-content">
<div class="search-container">
<input type="text" class="search-input" id="searchInput">
<div class="search-results" id="searchResults"></div>
</div>
<h2>Services</h2>
<ul class="nav-list">
<li class="nav-item">
<a href="#workflowservice" class="nav-link">WorkflowService</a>
<ul class="nav-sublist">
<li><a href="#startworkflow" class="nav-sublink">StartWorkflow</a></li>
<li><a href="#getworkflow" class="nav-sublink">GetWorkflow</a></li>
</ul>
</li>
<li class="nav-item">
<a href="#namespaceservice" class="nav-link">NamespaceService</a>
<ul class="nav-sublist">
<li><a href="#getnamespace" class="nav-sublink">GetNamespace</a></li>
</ul>
</li>
</ul>
<h2>Types</h2>
<ul class="nav-list">
<li><a href="#ref-timestamp" class="nav-sublink">Timestamp</a></li>
<li><a href="#ref-payload" class="nav-sublink">Payload</a></li>
</ul>
</div>
</nav>
<main class="main-content"></main>
</body></html>`

func TestBuildCollectsEntriesInDocumentOrder(t *testing.T) {
	idx, err := Build(strings.NewReader(sidebarFixture))
	require.NoError(t, err)

	want := []Entry{
		{Text: "WorkflowService", Kind: KindService, Anchor: "workflowservice"},
		{Text: "StartWorkflow", Kind: KindMethod, ParentService: "WorkflowService", Anchor: "startworkflow"},
		{Text: "GetWorkflow", Kind: KindMethod, ParentService: "WorkflowService", Anchor: "getworkflow"},
		{Text: "NamespaceService", Kind: KindService, Anchor: "namespaceservice"},
		{Text: "GetNamespace", Kind: KindMethod, ParentService: "NamespaceService", Anchor: "getnamespace"},
		{Text: "Timestamp", Kind: KindType, Anchor: "ref-timestamp"},
		{Text: "Payload", Kind: KindType, Anchor: "ref-payload"},
	}
	assert.Equal(t, want, idx.Entries())
}

func TestBuildEveryMethodHasAKnownParent(t *testing.T) {
	idx, err := Build(strings.NewReader(sidebarFixture))
	require.NoError(t, err)

	services := map[string]bool{}
	for _, e := range idx.Entries() {
		if e.Kind == KindService {
			services[e.Text] = true
		}
	}
	for _, e := range idx.Entries() {
		if e.Kind == KindMethod {
			assert.True(t, services[e.ParentService], "method %q has unknown parent %q", e.Text, e.ParentService)
		}
	}
}

func TestBuildMissingSidebarIsEmpty(t *testing.T) {
	idx, err := Build(strings.NewReader("<html><body><main>no nav here</main></body></html>"))
	require.NoError(t, err)
	assert.Zero(t, idx.Len())
}

func TestBuildEmptySidebarSections(t *testing.T) {
	page := `<nav class="sidebar"><div class="sidebar-content"><h2>Services</h2><ul class="nav-list"></ul></div></nav>`
	idx, err := Build(strings.NewReader(page))
	require.NoError(t, err)
	assert.Zero(t, idx.Len())
}

func TestKindJSON(t *testing.T) {
	data, err := KindMethod.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"method"`, string(data))
}
