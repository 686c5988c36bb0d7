package proto

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/protodoc/protodoc/internal/logfields"
)

var (
	packageRe  = regexp.MustCompile(`package\s+([\w.]+)\s*;`)
	importRe   = regexp.MustCompile(`import\s+(?:public\s+|weak\s+)?"([^"]+)"\s*;`)
	serviceRe  = regexp.MustCompile(`service\s+(\w+)\s*\{`)
	messageRe  = regexp.MustCompile(`message\s+(\w+)\s*\{`)
	enumRe     = regexp.MustCompile(`enum\s+(\w+)\s*\{`)
	rpcRe      = regexp.MustCompile(`rpc\s+(\w+)\s*\(\s*([\w.]+)\s*\)\s*returns\s*\(\s*([\w.]+)\s*\)\s*(\{|;)`)
	httpOptRe  = regexp.MustCompile(`option\s*\(\s*google\.api\.http\s*\)\s*=\s*\{`)
	httpVerbRe = regexp.MustCompile(`(get|post|put|delete|patch)\s*:\s*"([^"]+)"`)
	httpBodyRe = regexp.MustCompile(`body\s*:\s*"([^"]*)"`)
	fieldRe    = regexp.MustCompile(`(?m)^\s*(?:(repeated|optional|required)\s+)?(map\s*<[^>]+>|[\w.]+)\s+(\w+)\s*=\s*(\d+)\s*(?:\[([^\]]*)\])?\s*;`)
	enumValRe  = regexp.MustCompile(`(?m)^\s*(\w+)\s*=\s*(-?\d+)\s*(?:\[[^\]]*\])?\s*;`)
)

// fieldKeywords are message-body leading tokens the field pattern must not
// swallow (they introduce blocks or options, not fields).
var fieldKeywords = map[string]bool{
	"option": true, "reserved": true, "extensions": true,
}

// SimpleName strips any package qualification from a type name.
func SimpleName(qualified string) string { return simpleName(qualified) }

// Parser accumulates definitions from one or more protobuf files.
type Parser struct {
	reg *Registry
}

// NewParser returns a parser with an empty registry.
func NewParser() *Parser { return &Parser{reg: NewRegistry()} }

// Registry returns the accumulated registry.
func (p *Parser) Registry() *Registry { return p.reg }

// ParseFile parses a single protobuf file from disk.
func (p *Parser) ParseFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read proto file: %w", err)
	}
	p.Parse(string(data), path)
	return nil
}

// ParseDirs walks the given roots, parsing every .proto file found. Parse
// failures on individual files are logged and skipped, matching the
// tolerant contract of the documentation generator. After walking, the
// well-known types are injected and qualified names are registered.
func (p *Parser) ParseDirs(roots ...string) (*Registry, error) {
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".proto") {
				return nil
			}
			if perr := p.ParseFile(path); perr != nil {
				slog.Warn("Failed to parse proto file", logfields.Path(path), logfields.Error(perr))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk proto directory %s: %w", root, err)
		}
	}
	p.Finalize()
	return p.reg, nil
}

// Finalize injects well-known types and registers package-qualified aliases.
// Safe to call once after all files are parsed.
func (p *Parser) Finalize() {
	p.addWellKnownTypes()
	p.buildQualifiedNames()
}

// Parse scans protobuf source text. filePath is used for package attribution only.
func (p *Parser) Parse(content, filePath string) {
	if m := packageRe.FindStringSubmatch(content); m != nil {
		p.reg.Packages[filePath] = m[1]
	}
	for _, m := range importRe.FindAllStringSubmatch(content, -1) {
		p.reg.Imports[filePath] = append(p.reg.Imports[filePath], m[1])
	}

	// Comments are blanked rather than removed so declaration offsets in the
	// stripped text line up with the original, which keeps doc-comment
	// extraction a simple backwards scan.
	stripped := blankComments(content)

	p.parseServices(content, stripped, filePath)
	p.parseMessages(content, stripped, filePath)
	p.parseEnums(content, stripped, filePath)
}

func (p *Parser) parseServices(content, stripped, filePath string) {
	for _, loc := range serviceRe.FindAllStringSubmatchIndex(stripped, -1) {
		name := stripped[loc[2]:loc[3]]
		open := loc[1] - 1
		closing := matchBrace(stripped, open)
		if closing < 0 {
			continue // malformed block
		}
		svc := &Service{
			Name:       name,
			Comment:    leadingComment(content, loc[0]),
			SourceFile: filePath,
		}
		p.parseMethods(content, stripped, loc[1], closing, svc)
		p.reg.Services = append(p.reg.Services, svc)
	}
}

func (p *Parser) parseMethods(content, stripped string, bodyStart, bodyEnd int, svc *Service) {
	body := stripped[bodyStart:bodyEnd]
	for _, loc := range rpcRe.FindAllStringSubmatchIndex(body, -1) {
		method := Method{
			Name:       body[loc[2]:loc[3]],
			InputType:  body[loc[4]:loc[5]],
			OutputType: body[loc[6]:loc[7]],
			Comment:    leadingComment(content, bodyStart+loc[0]),
		}
		if body[loc[8]:loc[9]] == "{" {
			open := loc[9] - 1
			closing := matchBrace(body, open)
			if closing < 0 {
				continue // malformed rpc block
			}
			parseHTTPRule(body[open+1:closing], &method)
		}
		svc.Methods = append(svc.Methods, method)
	}
}

// parseHTTPRule extracts google.api.http verb, path and body from an rpc body.
func parseHTTPRule(rpcBody string, method *Method) {
	loc := httpOptRe.FindStringIndex(rpcBody)
	if loc == nil {
		return
	}
	open := loc[1] - 1
	closing := matchBrace(rpcBody, open)
	if closing < 0 {
		return
	}
	rule := rpcBody[open+1 : closing]
	if m := httpVerbRe.FindStringSubmatch(rule); m != nil {
		method.HTTPMethod = strings.ToUpper(m[1])
		method.HTTPPath = m[2]
	}
	if m := httpBodyRe.FindStringSubmatch(rule); m != nil {
		method.HTTPBody = m[1]
	}
}

func (p *Parser) parseMessages(content, stripped, filePath string) {
	for _, loc := range messageRe.FindAllStringSubmatchIndex(stripped, -1) {
		name := stripped[loc[2]:loc[3]]
		open := loc[1] - 1
		closing := matchBrace(stripped, open)
		if closing < 0 {
			continue
		}
		msg := &Message{
			Name:       name,
			Comment:    leadingComment(content, loc[0]),
			SourceFile: filePath,
		}
		p.parseFields(content, stripped, loc[1], closing, msg)
		p.reg.Messages[name] = msg
	}
}

func (p *Parser) parseFields(content, stripped string, bodyStart, bodyEnd int, msg *Message) {
	// Blank nested message/enum/oneof blocks so their fields are not
	// attributed to the enclosing message.
	body := blankNestedBlocks(stripped[bodyStart:bodyEnd])
	for _, loc := range fieldRe.FindAllStringSubmatchIndex(body, -1) {
		typeName := strings.TrimSpace(body[loc[4]:loc[5]])
		if fieldKeywords[typeName] {
			continue
		}
		number, err := strconv.Atoi(body[loc[8]:loc[9]])
		if err != nil {
			continue
		}
		field := Field{
			Name:   body[loc[6]:loc[7]],
			Type:   typeName,
			Number: number,
		}
		if loc[2] >= 0 {
			field.Label = body[loc[2]:loc[3]]
		}
		if loc[10] >= 0 {
			field.Deprecated = strings.Contains(strings.ToLower(body[loc[10]:loc[11]]), "deprecated = true")
		}
		field.Comment = fieldComment(content, bodyStart+loc[1], leadingComment(content, bodyStart+loc[0]))
		msg.Fields = append(msg.Fields, field)
	}
}

func (p *Parser) parseEnums(content, stripped, filePath string) {
	for _, loc := range enumRe.FindAllStringSubmatchIndex(stripped, -1) {
		name := stripped[loc[2]:loc[3]]
		open := loc[1] - 1
		closing := matchBrace(stripped, open)
		if closing < 0 {
			continue
		}
		enum := &Enum{
			Name:       name,
			Comment:    leadingComment(content, loc[0]),
			SourceFile: filePath,
		}
		body := stripped[loc[1]:closing]
		for _, vm := range enumValRe.FindAllStringSubmatch(body, -1) {
			if vm[1] == "option" || vm[1] == "reserved" {
				continue
			}
			number, err := strconv.Atoi(vm[2])
			if err != nil {
				continue
			}
			enum.Values = append(enum.Values, EnumValue{Name: vm[1], Number: number})
		}
		p.reg.Enums[name] = enum
	}
}

// buildQualifiedNames registers package-qualified aliases for all types.
// Both qualified and bare names resolve to the same definition.
func (p *Parser) buildQualifiedNames() {
	for name, msg := range p.reg.Messages {
		if strings.Contains(name, ".") {
			continue
		}
		if pkg := p.reg.Packages[msg.SourceFile]; pkg != "" {
			p.reg.Messages[pkg+"."+name] = msg
		}
	}
	for name, enum := range p.reg.Enums {
		if strings.Contains(name, ".") {
			continue
		}
		if pkg := p.reg.Packages[enum.SourceFile]; pkg != "" {
			p.reg.Enums[pkg+"."+name] = enum
		}
	}
}

// matchBrace returns the index of the brace closing the one at open, or -1.
func matchBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// blankComments replaces comments with spaces, preserving offsets and
// newlines. String literals are honored so "//" inside a string survives.
func blankComments(src string) string {
	out := []byte(src)
	i := 0
	for i < len(out) {
		switch {
		case out[i] == '"':
			i++
			for i < len(out) && out[i] != '"' {
				if out[i] == '\\' {
					i++
				}
				i++
			}
			i++
		case i+1 < len(out) && out[i] == '/' && out[i+1] == '/':
			for i < len(out) && out[i] != '\n' {
				out[i] = ' '
				i++
			}
		case i+1 < len(out) && out[i] == '/' && out[i+1] == '*':
			for i < len(out) {
				if i+1 < len(out) && out[i] == '*' && out[i+1] == '/' {
					out[i], out[i+1] = ' ', ' '
					i += 2
					break
				}
				if out[i] != '\n' {
					out[i] = ' '
				}
				i++
			}
		default:
			i++
		}
	}
	return string(out)
}

// blankNestedBlocks blanks the bodies of nested message/enum/oneof blocks.
func blankNestedBlocks(body string) string {
	out := []byte(body)
	for _, re := range []*regexp.Regexp{messageRe, enumRe, oneofRe} {
		for {
			loc := re.FindIndex(out)
			if loc == nil {
				break
			}
			open := loc[1] - 1
			closing := matchBrace(string(out), open)
			if closing < 0 {
				break
			}
			for i := loc[0]; i <= closing; i++ {
				if out[i] != '\n' {
					out[i] = ' '
				}
			}
		}
	}
	return string(out)
}

var oneofRe = regexp.MustCompile(`oneof\s+(\w+)\s*\{`)

// leadingComment collects the contiguous // lines directly above the
// declaration starting at pos and returns them joined with spaces.
func leadingComment(content string, pos int) string {
	lineStart := strings.LastIndexByte(content[:pos], '\n')
	if lineStart < 0 {
		return ""
	}
	var lines []string
	rest := content[:lineStart]
	for {
		prev := strings.LastIndexByte(rest, '\n')
		line := strings.TrimSpace(rest[prev+1:])
		if !strings.HasPrefix(line, "//") {
			break
		}
		lines = append([]string{strings.TrimSpace(strings.TrimPrefix(line, "//"))}, lines...)
		if prev < 0 {
			break
		}
		rest = rest[:prev]
	}
	return strings.Join(lines, " ")
}

// fieldComment prefers a trailing same-line comment after end, falling back
// to the leading comment above the field.
func fieldComment(content string, end int, leading string) string {
	if end < len(content) {
		lineEnd := strings.IndexByte(content[end:], '\n')
		if lineEnd < 0 {
			lineEnd = len(content) - end
		}
		tail := strings.TrimSpace(content[end : end+lineEnd])
		if strings.HasPrefix(tail, "//") {
			return strings.TrimSpace(strings.TrimPrefix(tail, "//"))
		}
	}
	return leading
}
