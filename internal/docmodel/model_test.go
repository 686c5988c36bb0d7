package docmodel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protodoc/protodoc/internal/proto"
)

const fixtureService = `syntax = "proto3";
package example.cloudservice.v1;

service CloudService {
  rpc GetNamespace(GetNamespaceRequest) returns (GetNamespaceResponse) {
    option (google.api.http) = {
      get: "/api/v1/namespaces/{namespace}"
    };
  }
}

message GetNamespaceRequest {
  string namespace_id = 1;
}

message GetNamespaceResponse {
  example.namespace.v1.Namespace namespace = 1;
}
`

const fixtureNamespace = `syntax = "proto3";
package example.namespace.v1;

// A namespace hosts workflows.
message Namespace {
  string id = 1;
  NamespaceSpec spec = 2;
  google.protobuf.Timestamp created_time = 3;
  State state = 4;
  string legacy_region = 5 [deprecated = true];
}

message NamespaceSpec {
  string region = 1;
  example.limits.v1.Quota quota = 2;
}

enum State {
  STATE_UNSPECIFIED = 0;
  STATE_ACTIVE = 1;
}
`

const fixtureLimits = `syntax = "proto3";
package example.limits.v1;

message Quota {
  int32 max_actions = 1;
  QuotaDetail detail = 2;
}

message QuotaDetail {
  DeepDetail deep = 1;
}

message DeepDetail {
  string note = 1;
}
`

func fixtureSet(t *testing.T, opts Options) *DocSet {
	t.Helper()
	p := proto.NewParser()
	p.Parse(fixtureService, "example/cloudservice/v1/service.proto")
	p.Parse(fixtureNamespace, "example/namespace/v1/message.proto")
	p.Parse(fixtureLimits, "example/limits/v1/message.proto")
	p.Finalize()
	return Build(p.Registry(), opts)
}

func typeNames(set *DocSet) []string {
	names := make([]string, 0, len(set.Types))
	for _, rt := range set.Types {
		names = append(names, rt.SimpleName)
	}
	return names
}

func TestReferencedTypeCollection(t *testing.T) {
	set := fixtureSet(t, Options{})
	names := typeNames(set)

	assert.Contains(t, names, "Namespace", "directly referenced external type")
	assert.Contains(t, names, "NamespaceSpec", "depth-1 dependency")
	assert.Contains(t, names, "Quota", "depth-2 dependency")
	assert.Contains(t, names, "Timestamp", "allowed well-known type")
	assert.NotContains(t, names, "State", "generic simple names are filtered")
	assert.NotContains(t, names, "GetNamespaceRequest", "service-package types stay inline")
}

func TestRecursionDepthLimit(t *testing.T) {
	set := fixtureSet(t, Options{})
	names := typeNames(set)
	// Namespace(0) -> NamespaceSpec(1) -> Quota(2); QuotaDetail sits at depth
	// 3 and must not be chased.
	assert.NotContains(t, names, "QuotaDetail")
	assert.NotContains(t, names, "DeepDetail")
}

func TestTypesSortedAlphabetically(t *testing.T) {
	set := fixtureSet(t, Options{})
	names := typeNames(set)
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i], "types must be in alphabetical order")
	}
}

func TestExcludeTypesOption(t *testing.T) {
	set := fixtureSet(t, Options{ExcludeTypes: []string{"example.limits."}})
	assert.NotContains(t, typeNames(set), "Quota")
}

func TestIsReferenced(t *testing.T) {
	set := fixtureSet(t, Options{})
	assert.True(t, set.IsReferenced("example.namespace.v1.Namespace"))
	assert.True(t, set.IsReferenced("Namespace"))
	assert.False(t, set.IsReferenced("GetNamespaceRequest"))
}

func TestExampleJSONPreservesFieldOrderAndSkipsDeprecated(t *testing.T) {
	set := fixtureSet(t, Options{})
	msg := set.Registry().ResolveMessage("Namespace")
	require.NotNil(t, msg)

	out := set.ExampleJSON(msg)
	require.True(t, json.Valid([]byte(out)), "example must be valid JSON: %s", out)

	assert.NotContains(t, out, "legacy_region", "deprecated fields are omitted")
	assert.Contains(t, out, `"2023-12-01T12:00:00Z"`, "timestamp heuristic")
	// Declaration order: id before spec before created_time.
	idIdx := indexOf(out, `"id"`)
	specIdx := indexOf(out, `"spec"`)
	createdIdx := indexOf(out, `"created_time"`)
	assert.True(t, idIdx < specIdx && specIdx < createdIdx, "field order preserved: %s", out)
}

func TestExampleValueHeuristics(t *testing.T) {
	set := fixtureSet(t, Options{})

	v := set.exampleValue(proto.Field{Name: "namespace_id", Type: "string"}, 0)
	assert.Equal(t, "example_string", v, "scalar mapping wins over naming heuristics")

	v = set.exampleValue(proto.Field{Name: "owner_id", Type: "OpaqueRef"}, 0)
	assert.Equal(t, "unique_identifier_123", v)

	v = set.exampleValue(proto.Field{Name: "contact_email", Type: "Unknown"}, 0)
	assert.Equal(t, "user@example.com", v)

	v = set.exampleValue(proto.Field{Name: "display_name", Type: "Unknown"}, 0)
	assert.Equal(t, "example_name", v)

	v = set.exampleValue(proto.Field{Name: "mystery", Type: "Unknown"}, 0)
	assert.Equal(t, "example_mystery", v)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
