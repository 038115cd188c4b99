// Package load reads entity schema files into an ordered, unresolved representation.
package load

import (
	"errors"
	"fmt"
	"go/token"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/syssam/crudgen"
)

// Schema is a loaded schema file. Entities keep their declaration order.
type Schema struct {
	Path     string    `json:"path,omitempty"`
	Entities []*Entity `json:"entities,omitempty"`
	// Warnings holds non-fatal findings, such as unknown keys.
	Warnings []string `json:"warnings,omitempty"`
}

// Entity returns the entity declared with the given name.
func (s *Schema) Entity(name string) (*Entity, bool) {
	for _, e := range s.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Entity is one schema entry.
type Entity struct {
	Name           string       `json:"name"`
	Line           int          `json:"line,omitempty"`
	Table          string       `json:"table,omitempty"`
	Fields         []*Field     `json:"fields,omitempty"`
	Relations      []*Relations `json:"relations,omitempty"`
	NestedRequests []string     `json:"nested_requests,omitempty"`
	Generate       Generate     `json:"generate"`
	GenerateExcept []string     `json:"generate_except,omitempty"`
	With           []string     `json:"with,omitempty"`
	Unique         [][]string   `json:"unique,omitempty"`
	Timestamps     bool         `json:"timestamps"`
}

// Field is a raw field declaration: a column name and its type spec.
type Field struct {
	Name string `json:"name"`
	Spec string `json:"spec"`
	Line int    `json:"line,omitempty"`
}

// Relations is one relation-kind group: the kind keyword and its
// comma separated "Target[:alias]" entries.
type Relations struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
	Line  int    `json:"line,omitempty"`
}

// GenerateMode selects which artifacts an entity generates.
type GenerateMode uint8

// Generate modes.
const (
	GenerateAll GenerateMode = iota
	GenerateNone
	GenerateOnly
)

// Generate is the per-entity generation toggle: true, "all" or omitted
// (everything), false (nothing) or a list of components.
type Generate struct {
	Mode       GenerateMode `json:"mode"`
	Components []string     `json:"components,omitempty"`
}

// Entity keys recognized in a schema entry.
const (
	keyFields         = "fields"
	keyRelations      = "relations"
	keyNestedRequests = "nested_requests"
	keyGenerate       = "generate"
	keyGenerateExcept = "generate_except"
	keyWith           = "with"
	keyUnique         = "unique"
	keyTable          = "table"
	keyTimestamps     = "timestamps"
)

// LoadFile reads and parses the schema file at path.
// A missing, unreadable or empty file is an input error.
func LoadFile(path string) (*Schema, error) {
	src, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, crudgen.NewInputError(path, 0, "schema file not found", nil)
	case err != nil:
		return nil, crudgen.NewInputError(path, 0, "read schema file", err)
	}
	return Parse(src, path)
}

// Parse parses schema source. path is only used in error messages.
func Parse(src []byte, path string) (*Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, crudgen.NewInputError(path, 0, "malformed schema", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || isNull(doc.Content[0]) {
		return nil, crudgen.NewInputError(path, 0, "schema is empty", nil)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, crudgen.NewInputError(path, root.Line, "schema must be a mapping of entity names to definitions", nil)
	}
	if len(root.Content) == 0 {
		return nil, crudgen.NewInputError(path, root.Line, "schema is empty", nil)
	}
	p := &parser{path: path, schema: &Schema{Path: path}}
	seen := make(map[string]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if !token.IsIdentifier(key.Value) {
			return nil, p.errorf(key, "invalid entity name %q", key.Value)
		}
		if seen[key.Value] {
			return nil, p.errorf(key, "entity %q declared twice", key.Value)
		}
		seen[key.Value] = true
		e, err := p.entity(key, value)
		if err != nil {
			return nil, err
		}
		p.schema.Entities = append(p.schema.Entities, e)
	}
	return p.schema, nil
}

type parser struct {
	path   string
	schema *Schema
}

func (p *parser) errorf(n *yaml.Node, format string, args ...any) error {
	return crudgen.NewInputError(p.path, n.Line, fmt.Sprintf(format, args...), nil)
}

func (p *parser) warnf(format string, args ...any) {
	p.schema.Warnings = append(p.schema.Warnings, fmt.Sprintf(format, args...))
}

func (p *parser) entity(key, n *yaml.Node) (*Entity, error) {
	e := &Entity{Name: key.Value, Line: key.Line, Timestamps: true}
	if isNull(n) {
		return e, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, "entity %s must be a mapping", e.Name)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		var err error
		switch k.Value {
		case keyFields:
			e.Fields, err = p.fields(e, v)
		case keyRelations:
			e.Relations, err = p.relations(e, v)
		case keyNestedRequests:
			e.NestedRequests, err = p.list(v, keyNestedRequests)
		case keyGenerate:
			e.Generate, err = p.generate(v)
		case keyGenerateExcept:
			e.GenerateExcept, err = p.list(v, keyGenerateExcept)
		case keyWith:
			e.With, err = p.list(v, keyWith)
		case keyUnique:
			e.Unique, err = p.unique(v)
		case keyTable:
			if v.Kind != yaml.ScalarNode || v.Value == "" {
				err = p.errorf(v, "%s: table must be a non-empty string", e.Name)
			}
			e.Table = v.Value
		case keyTimestamps:
			e.Timestamps, err = cast.ToBoolE(v.Value)
			if err != nil || v.Kind != yaml.ScalarNode {
				err = p.errorf(v, "%s: timestamps must be a boolean", e.Name)
			}
		default:
			p.warnf("%s: unknown key %q ignored (line %d)", e.Name, k.Value, k.Line)
		}
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (p *parser) fields(e *Entity, n *yaml.Node) ([]*Field, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, "%s: fields must be a mapping of column names to type specs", e.Name)
	}
	fields := make([]*Field, 0, len(n.Content)/2)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode || isNull(v) || strings.TrimSpace(v.Value) == "" {
			return nil, p.errorf(v, "%s.%s: field spec must be a string", e.Name, k.Value)
		}
		if seen[k.Value] {
			return nil, p.errorf(k, "%s.%s: field declared twice", e.Name, k.Value)
		}
		seen[k.Value] = true
		fields = append(fields, &Field{Name: k.Value, Spec: v.Value, Line: v.Line})
	}
	return fields, nil
}

func (p *parser) relations(e *Entity, n *yaml.Node) ([]*Relations, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, "%s: relations must be a mapping of relation kinds", e.Name)
	}
	var groups []*Relations
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		entries, err := p.list(v, keyRelations+"."+k.Value)
		if err != nil {
			return nil, err
		}
		groups = append(groups, &Relations{Kind: k.Value, Value: strings.Join(entries, ","), Line: k.Line})
	}
	return groups, nil
}

// generate decodes the generate toggle.
func (p *parser) generate(n *yaml.Node) (Generate, error) {
	switch {
	case isNull(n):
		return Generate{Mode: GenerateAll}, nil
	case n.Kind == yaml.SequenceNode:
		list, err := p.list(n, keyGenerate)
		return Generate{Mode: GenerateOnly, Components: list}, err
	case n.Kind != yaml.ScalarNode:
		return Generate{}, p.errorf(n, "generate must be a boolean, \"all\" or a list of components")
	case strings.EqualFold(n.Value, "all"):
		return Generate{Mode: GenerateAll}, nil
	}
	if n.ShortTag() == "!!bool" {
		on, err := cast.ToBoolE(n.Value)
		if err != nil {
			return Generate{}, p.errorf(n, "generate: %v", err)
		}
		if on {
			return Generate{Mode: GenerateAll}, nil
		}
		return Generate{Mode: GenerateNone}, nil
	}
	list, err := p.list(n, keyGenerate)
	return Generate{Mode: GenerateOnly, Components: list}, err
}

func (p *parser) unique(n *yaml.Node) ([][]string, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, p.errorf(n, "unique must be a list of column lists")
	}
	var out [][]string
	for _, c := range n.Content {
		cols, err := p.list(c, keyUnique)
		if err != nil {
			return nil, err
		}
		out = append(out, cols)
	}
	return out, nil
}

// list decodes a sequence of strings or a single comma separated string.
func (p *parser) list(n *yaml.Node, key string) ([]string, error) {
	var out []string
	switch n.Kind {
	case yaml.ScalarNode:
		if isNull(n) {
			return nil, nil
		}
		for _, s := range strings.Split(n.Value, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case yaml.SequenceNode:
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return nil, p.errorf(c, "%s: list items must be strings", key)
			}
			if s := strings.TrimSpace(cast.ToString(c.Value)); s != "" {
				out = append(out, s)
			}
		}
	default:
		return nil, p.errorf(n, "%s: expected a string or a list of strings", key)
	}
	return out, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}
