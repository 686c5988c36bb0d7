package docmodel

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/protodoc/protodoc/internal/proto"
)

// nestedFieldCap limits how many fields a nested example object shows;
// exampleDepthCap stops expansion of deeply nested or cyclic types.
const (
	nestedFieldCap  = 3
	exampleDepthCap = 3
)

// ExampleJSON synthesizes an indented example payload for a message,
// preserving field declaration order.
func (d *DocSet) ExampleJSON(msg *proto.Message) string {
	obj := d.exampleObject(msg, true, 0)
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (d *DocSet) exampleObject(msg *proto.Message, full bool, depth int) orderedObject {
	var obj orderedObject
	count := 0
	for _, field := range msg.Fields {
		if field.Deprecated {
			continue
		}
		if !full && count >= nestedFieldCap {
			break
		}
		value := d.exampleValue(field, depth)
		if field.Label == "repeated" {
			value = []any{value}
		}
		obj = append(obj, member{Key: field.Name, Value: value})
		count++
	}
	return obj
}

var scalarExamples = map[string]any{
	"string": "example_string",
	"int32":  123,
	"int64":  123456789,
	"uint32": 123,
	"uint64": 123456789,
	"bool":   true,
	"double": 123.45,
	"float":  123.45,
	"bytes":  "base64_encoded_data",
}

// exampleValue picks a representative value from the field type and a few
// naming heuristics.
func (d *DocSet) exampleValue(field proto.Field, depth int) any {
	baseType := strings.ToLower(proto.SimpleName(field.Type))
	if v, ok := scalarExamples[baseType]; ok {
		return v
	}
	switch {
	case strings.Contains(baseType, "timestamp"):
		return "2023-12-01T12:00:00Z"
	case strings.HasSuffix(field.Name, "_id"):
		return "unique_identifier_123"
	case strings.Contains(strings.ToLower(field.Name), "email"):
		return "user@example.com"
	case strings.Contains(strings.ToLower(field.Name), "name"):
		return "example_name"
	case d.shouldExpand(field.Type):
		if msg := d.reg.ResolveMessage(field.Type); msg != nil {
			if depth >= exampleDepthCap {
				return "example_" + strings.ToLower(proto.SimpleName(field.Type))
			}
			return d.exampleObject(msg, false, depth+1)
		}
		if enum := d.reg.ResolveEnum(field.Type); enum != nil && len(enum.Values) > 0 {
			return enum.Values[0].Name
		}
		return "example_" + strings.ToLower(proto.SimpleName(field.Type))
	default:
		return "example_" + field.Name
	}
}

// orderedObject is a JSON object that marshals members in declaration order.
type orderedObject []member

type member struct {
	Key   string
	Value any
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
