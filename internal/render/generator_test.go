package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protodoc/protodoc/internal/config"
	"github.com/protodoc/protodoc/internal/docmodel"
	"github.com/protodoc/protodoc/internal/proto"
)

const renderFixture = `
syntax = "proto3";

package example.workflow.v1;

import "google/protobuf/timestamp.proto";

// WorkflowService manages workflow executions.
service WorkflowService {
  // StartWorkflow starts a new workflow execution.
  rpc StartWorkflow(StartWorkflowRequest) returns (StartWorkflowResponse) {
    option (google.api.http) = {
      post: "/v1/workflows"
      body: "*"
    };
  }

  // GetWorkflow returns a workflow by id.
  rpc GetWorkflow(GetWorkflowRequest) returns (GetWorkflowResponse) {
    option (google.api.http) = {
      get: "/v1/workflows/{workflow_id}"
    };
  }
}

message StartWorkflowRequest {
  string workflow_id = 1; // Unique workflow identifier.
  google.protobuf.Timestamp deadline = 2;
}

message StartWorkflowResponse {
  string run_id = 1;
}

message GetWorkflowRequest {
  string workflow_id = 1;
}

message GetWorkflowResponse {
  string run_id = 1;
  bool running = 2;
}
`

func buildTestPage(t *testing.T) string {
	t.Helper()
	parser := proto.NewParser()
	parser.Parse(renderFixture, "workflow/v1/service.proto")
	parser.Finalize()
	set := docmodel.Build(parser.Registry(), docmodel.Options{})

	cfg := config.DocsConfig{
		Title:      "Example API",
		APIBaseURL: "https://api.example.com",
	}
	page, err := New(cfg, set).Page()
	require.NoError(t, err)
	return string(page)
}

func TestPageStructure(t *testing.T) {
	page := buildTestPage(t)

	assert.Contains(t, page, "<title>Example API</title>")
	assert.Contains(t, page, `<nav class="sidebar">`)
	assert.Contains(t, page, `id="searchInput"`)
	assert.Contains(t, page, `id="searchResults"`)
	assert.Contains(t, page, "<h2>Services</h2>")

	// Sidebar entries and their content anchors.
	assert.Contains(t, page, `<a href="#workflowservice" class="nav-link">WorkflowService</a>`)
	assert.Contains(t, page, `<a href="#startworkflow" class="nav-sublink">StartWorkflow</a>`)
	assert.Contains(t, page, `<h2 id="workflowservice">WorkflowService</h2>`)
	assert.Contains(t, page, `<h3 id="startworkflow">StartWorkflow</h3>`)

	// Types section lists the referenced well-known type.
	assert.Contains(t, page, "<h2>Types</h2>")
	assert.Contains(t, page, `href="#ref-timestamp"`)
	assert.Contains(t, page, `<h4 id="ref-timestamp">Timestamp</h4>`)

	// Embedded script and styles survive templating.
	assert.Contains(t, page, "search-highlight")
	assert.Contains(t, page, "filterSidebar")
}

func TestPageMethodDocs(t *testing.T) {
	page := buildTestPage(t)

	assert.Contains(t, page, "<code>POST /v1/workflows</code>")
	assert.Contains(t, page, "<code>GET /v1/workflows/{workflow_id}</code>")
	assert.Contains(t, page, "<h4>Request</h4>")
	assert.Contains(t, page, "<h4>Response</h4>")
	assert.Contains(t, page, "<code>workflow_id</code>")
	assert.Contains(t, page, "Unique workflow identifier.")

	// Timestamp field links into the types section.
	assert.Contains(t, page, `<a href="#ref-timestamp">`)
}

func TestPageExamples(t *testing.T) {
	page := buildTestPage(t)

	// Tab triples for the body-carrying method.
	assert.Contains(t, page, `data-tab="curl-startworkflow"`)
	assert.Contains(t, page, `data-tab="http-startworkflow"`)
	assert.Contains(t, page, `data-tab="response-startworkflow"`)
	assert.Contains(t, page, `id="curl-code-startworkflow"`)
	assert.Contains(t, page, `data-copy-target="curl-code-startworkflow"`)

	// The curl command targets the configured base URL and carries auth.
	assert.Contains(t, page, `https://api.example.com/v1/workflows`)
	assert.Contains(t, page, "Authorization: Bearer YOUR_API_KEY")

	// GET methods have no -X flag and no request body flag.
	curlStart := strings.Index(page, `id="curl-code-getworkflow"`)
	require.GreaterOrEqual(t, curlStart, 0)
	curlEnd := strings.Index(page[curlStart:], "</code>")
	require.GreaterOrEqual(t, curlEnd, 0)
	getCurl := page[curlStart : curlStart+curlEnd]
	assert.NotContains(t, getCurl, "-X ")
	assert.NotContains(t, getCurl, "-d '")
}

func TestPageEscapesTitle(t *testing.T) {
	parser := proto.NewParser()
	parser.Parse(renderFixture, "workflow/v1/service.proto")
	parser.Finalize()
	set := docmodel.Build(parser.Registry(), docmodel.Options{})

	cfg := config.DocsConfig{Title: "A <b>& B", APIBaseURL: "https://api.example.com"}
	page, err := New(cfg, set).Page()
	require.NoError(t, err)
	assert.Contains(t, string(page), "A &lt;b&gt;&amp; B")
}

func TestFieldTypeFormatting(t *testing.T) {
	parser := proto.NewParser()
	parser.Parse(renderFixture, "workflow/v1/service.proto")
	parser.Finalize()
	set := docmodel.Build(parser.Registry(), docmodel.Options{})
	g := New(config.DocsConfig{}, set)

	tests := []struct {
		field proto.Field
		want  string
	}{
		{proto.Field{Type: "string"}, "string"},
		{proto.Field{Type: "int64"}, "integer"},
		{proto.Field{Type: "bytes"}, "string (base64)"},
		{proto.Field{Type: "string", Label: "repeated"}, "Array&lt;string&gt;"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, g.fieldType(tc.field))
	}
}
