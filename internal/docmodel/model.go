// Package docmodel resolves a parsed proto registry into the shape the
// reference page renders: ordered services plus the set of external types
// referenced from their method signatures.
package docmodel

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/protodoc/protodoc/internal/proto"
)

// Options tunes the referenced-type collection.
type Options struct {
	// ExcludeTypes lists qualified type names or name prefixes to hide from
	// the Types section, in addition to the built-in exclusions.
	ExcludeTypes []string
}

// ReferencedType is an external message or enum referenced from a service
// method signature. Exactly one of Message or Enum is set.
type ReferencedType struct {
	QualifiedName string
	SimpleName    string
	Package       string
	Message       *proto.Message
	Enum          *proto.Enum
}

// DocSet is the resolved documentation model for one registry snapshot.
type DocSet struct {
	Services []*proto.Service
	Types    []ReferencedType

	reg  *proto.Registry
	opts Options
	// mainPackages are the packages that define services; types from these
	// packages are documented inline and never appear in the Types section.
	mainPackages map[string]bool
	referenced   map[string]bool // qualified names present in Types
}

// recursionLimit caps how deep referenced types are chased through fields.
const recursionLimit = 2

// Build resolves the registry into a DocSet.
func Build(reg *proto.Registry, opts Options) *DocSet {
	d := &DocSet{
		Services:     reg.Services,
		reg:          reg,
		opts:         opts,
		mainPackages: make(map[string]bool),
		referenced:   make(map[string]bool),
	}
	for _, svc := range reg.Services {
		if pkg := reg.Packages[svc.SourceFile]; pkg != "" {
			d.mainPackages[pkg] = true
		}
	}
	d.collectReferencedTypes()
	return d
}

// Registry exposes the underlying registry for type resolution during rendering.
func (d *DocSet) Registry() *proto.Registry { return d.reg }

// IsReferenced reports whether the type has an entry in the Types section.
func (d *DocSet) IsReferenced(typeName string) bool {
	if d.referenced[typeName] {
		return true
	}
	return d.referenced[proto.SimpleName(typeName)]
}

// IsExternal reports whether the type lives outside the service packages.
func (d *DocSet) IsExternal(typeName string) bool {
	pkg := d.reg.PackageOf(typeName)
	return pkg != "" && !d.mainPackages[pkg]
}

func (d *DocSet) collectReferencedTypes() {
	found := map[string]ReferencedType{}

	var collect func(msg *proto.Message, visited map[string]bool, depth int)
	collect = func(msg *proto.Message, visited map[string]bool, depth int) {
		if msg == nil || visited[msg.Name] || depth > recursionLimit {
			return
		}
		visited[msg.Name] = true

		for _, field := range msg.Fields {
			if field.Deprecated || !d.shouldExpand(field.Type) {
				continue
			}
			pkg := d.reg.PackageOf(field.Type)
			if pkg == "" || d.mainPackages[pkg] || !d.isRelevant(field.Type) {
				continue
			}
			if m := d.reg.ResolveMessage(field.Type); m != nil {
				found[field.Type] = ReferencedType{QualifiedName: field.Type, SimpleName: proto.SimpleName(field.Type), Package: pkg, Message: m}
				nested := make(map[string]bool, len(visited))
				for k := range visited {
					nested[k] = true
				}
				collect(m, nested, depth+1)
			} else if e := d.reg.ResolveEnum(field.Type); e != nil {
				found[field.Type] = ReferencedType{QualifiedName: field.Type, SimpleName: proto.SimpleName(field.Type), Package: pkg, Enum: e}
			}
		}
	}

	for _, svc := range d.Services {
		for _, method := range svc.Methods {
			collect(d.reg.ResolveMessage(method.InputType), map[string]bool{}, 0)
			collect(d.reg.ResolveMessage(method.OutputType), map[string]bool{}, 0)
		}
	}

	// Deduplicate by simple name, then order alphabetically (locale-aware so
	// listing order is stable regardless of source ordering).
	seen := map[string]bool{}
	for _, name := range sortedKeys(found) {
		rt := found[name]
		if seen[rt.SimpleName] {
			continue
		}
		seen[rt.SimpleName] = true
		d.Types = append(d.Types, rt)
		d.referenced[rt.QualifiedName] = true
		d.referenced[rt.SimpleName] = true
	}
	coll := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(d.Types, func(i, j int) bool {
		return coll.CompareString(d.Types[i].SimpleName, d.Types[j].SimpleName) < 0
	})
}

func sortedKeys(m map[string]ReferencedType) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var scalarTypes = map[string]bool{
	"string": true, "int32": true, "int64": true, "uint32": true, "uint64": true,
	"sint32": true, "sint64": true, "fixed32": true, "fixed64": true,
	"sfixed32": true, "sfixed64": true, "bool": true, "double": true,
	"float": true, "bytes": true,
}

var allowedGoogleTypes = map[string]bool{
	"google.protobuf.Timestamp": true,
	"google.protobuf.Duration":  true,
	"google.protobuf.Any":       true,
}

var allowedCommonTypes = map[string]bool{
	"temporal.api.common.v1.Payload": true,
}

// shouldExpand reports whether a field type is a documentable composite.
func (d *DocSet) shouldExpand(typeName string) bool {
	if scalarTypes[typeName] || strings.HasPrefix(typeName, "map<") || strings.HasPrefix(typeName, "map ") {
		return false
	}
	if strings.HasPrefix(typeName, "google.protobuf.") {
		return allowedGoogleTypes[typeName]
	}
	if strings.HasPrefix(typeName, "temporal.api.common.") {
		return allowedCommonTypes[typeName]
	}
	return d.reg.ResolveMessage(typeName) != nil || d.reg.ResolveEnum(typeName) != nil
}

// Wrapper and infrastructure types that add no documentation value.
var excludedExact = map[string]bool{
	"google.protobuf.Empty":      true,
	"google.protobuf.StringValue": true,
	"google.protobuf.Int64Value":  true,
	"google.protobuf.BoolValue":   true,
}

var excludedPrefixes = []string{
	"temporal.api.enums.",
}

// Generic simple names that would clutter the Types section.
var excludedSimpleNames = map[string]bool{
	"status": true, "state": true, "error": true, "metadata": true,
	"config": true, "info": true, "data": true, "result": true,
}

// isRelevant decides whether a type deserves a Types-section entry.
func (d *DocSet) isRelevant(typeName string) bool {
	if excludedExact[typeName] {
		return false
	}
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(typeName, prefix) {
			return false
		}
	}
	for _, excluded := range d.opts.ExcludeTypes {
		if typeName == excluded || strings.HasPrefix(typeName, excluded) {
			return false
		}
	}
	if strings.HasPrefix(typeName, "temporal.api.common.") {
		return allowedCommonTypes[typeName]
	}
	if strings.HasPrefix(typeName, "google.protobuf.") {
		return allowedGoogleTypes[typeName]
	}
	return !excludedSimpleNames[strings.ToLower(proto.SimpleName(typeName))]
}
