package proto

// Source paths attributed to injected definitions. They mirror the real
// proto files the types come from so package attribution stays uniform.
const (
	timestampProto = "google/protobuf/timestamp.proto"
	durationProto  = "google/protobuf/duration.proto"
	anyProto       = "google/protobuf/any.proto"
	payloadProto   = "temporal/api/common/v1/message.proto"
)

// addWellKnownTypes injects frequently referenced external types so they can
// be documented without their source files being present in the repository.
func (p *Parser) addWellKnownTypes() {
	p.register(&Message{
		Name:       "Timestamp",
		Comment:    "A Timestamp represents a point in time independent of any time zone or local calendar, encoded as a count of seconds and fractions of seconds at nanosecond resolution.",
		SourceFile: timestampProto,
		Fields: []Field{
			{Name: "seconds", Type: "int64", Number: 1, Comment: "Represents seconds of UTC time since Unix epoch 1970-01-01T00:00:00Z."},
			{Name: "nanos", Type: "int32", Number: 2, Comment: "Non-negative fractions of a second at nanosecond resolution."},
		},
	}, "google.protobuf")

	p.register(&Message{
		Name:       "Duration",
		Comment:    "A Duration represents a signed, fixed-length span of time represented as a count of seconds and fractions of seconds at nanosecond resolution.",
		SourceFile: durationProto,
		Fields: []Field{
			{Name: "seconds", Type: "int64", Number: 1, Comment: "Signed seconds of the span of time."},
			{Name: "nanos", Type: "int32", Number: 2, Comment: "Signed fractions of a second at nanosecond resolution of the span of time."},
		},
	}, "google.protobuf")

	p.register(&Message{
		Name:       "Any",
		Comment:    "Any contains an arbitrary serialized protocol buffer message along with a URL that describes the type of the serialized message.",
		SourceFile: anyProto,
		Fields: []Field{
			{Name: "type_url", Type: "string", Number: 1, Comment: "A URL/resource name that uniquely identifies the type of the serialized protocol buffer message."},
			{Name: "value", Type: "bytes", Number: 2, Comment: "Must be a valid serialized protocol buffer of the above specified type."},
		},
	}, "google.protobuf")

	p.register(&Message{
		Name:       "Payload",
		Comment:    "Payload is used to serialize/deserialize data that is passed to/from activity/workflow implementations that are language agnostic.",
		SourceFile: payloadProto,
		Fields: []Field{
			{Name: "metadata", Type: "map<string,bytes>", Number: 1, Comment: "Metadata contains additional context information for this payload."},
			{Name: "data", Type: "bytes", Number: 2, Comment: "Serialized data."},
		},
	}, "temporal.api.common.v1")
}

// register stores a message under both its simple and qualified names and
// records the package for its source file. Parsed definitions win over
// injected ones.
func (p *Parser) register(msg *Message, pkg string) {
	if _, exists := p.reg.Messages[msg.Name]; !exists {
		p.reg.Messages[msg.Name] = msg
	}
	p.reg.Messages[pkg+"."+msg.Name] = msg
	p.reg.Packages[msg.SourceFile] = pkg
}
