// Package proto parses protobuf source files into the service, message and
// enum definitions the documentation generator renders. It is a permissive
// single-pass scanner, not a full protobuf compiler: files that protoc would
// reject still yield whatever definitions can be recognized.
package proto

// Field represents a field in a protobuf message.
type Field struct {
	Name       string
	Type       string
	Number     int
	Label      string // optional, required, repeated
	Comment    string
	Deprecated bool
}

// Message represents a protobuf message.
type Message struct {
	Name       string
	Fields     []Field
	Comment    string
	SourceFile string
}

// Enum represents a protobuf enum.
type Enum struct {
	Name       string
	Values     []EnumValue
	Comment    string
	SourceFile string
}

// EnumValue is a single name/number pair of an enum.
type EnumValue struct {
	Name   string
	Number int
}

// Method represents a protobuf service method.
type Method struct {
	Name       string
	InputType  string
	OutputType string
	Comment    string
	HTTPMethod string
	HTTPPath   string
	HTTPBody   string
}

// Service represents a protobuf service.
type Service struct {
	Name       string
	Methods    []Method
	Comment    string
	SourceFile string
}

// Registry aggregates definitions parsed from a repository. Services keep
// file/document order; messages and enums are keyed by both simple and
// package-qualified names after Finalize.
type Registry struct {
	Services []*Service
	Messages map[string]*Message
	Enums    map[string]*Enum
	Packages map[string]string   // file path -> package name
	Imports  map[string][]string // file path -> imported proto paths
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		Messages: make(map[string]*Message),
		Enums:    make(map[string]*Enum),
		Packages: make(map[string]string),
		Imports:  make(map[string][]string),
	}
}

// ServiceByName returns the named service or nil.
func (r *Registry) ServiceByName(name string) *Service {
	for _, s := range r.Services {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// ResolveMessage resolves a type reference to its message definition,
// trying the exact name first and then the bare simple name.
func (r *Registry) ResolveMessage(typeName string) *Message {
	if m, ok := r.Messages[typeName]; ok {
		return m
	}
	if m, ok := r.Messages[simpleName(typeName)]; ok {
		return m
	}
	return nil
}

// ResolveEnum resolves a type reference to its enum definition.
func (r *Registry) ResolveEnum(typeName string) *Enum {
	if e, ok := r.Enums[typeName]; ok {
		return e
	}
	if e, ok := r.Enums[simpleName(typeName)]; ok {
		return e
	}
	return nil
}

// PackageOf returns the package a type belongs to, or "" when unknown.
func (r *Registry) PackageOf(typeName string) string {
	if i := lastDot(typeName); i >= 0 {
		return typeName[:i]
	}
	if m := r.ResolveMessage(typeName); m != nil {
		return r.Packages[m.SourceFile]
	}
	if e := r.ResolveEnum(typeName); e != nil {
		return r.Packages[e.SourceFile]
	}
	return ""
}

// MethodCount returns the total number of methods across all services.
func (r *Registry) MethodCount() int {
	n := 0
	for _, s := range r.Services {
		n += len(s.Methods)
	}
	return n
}

func simpleName(qualified string) string {
	if i := lastDot(qualified); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
