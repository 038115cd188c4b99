package edge

import (
	"fmt"
	"go/token"
	"strings"
)

// Kind is the cardinality of a relation.
type Kind uint8

// Relation kinds.
const (
	BelongsTo Kind = iota + 1
	HasOne
	HasMany
	BelongsToMany
)

var kindNames = map[Kind]string{
	BelongsTo:     "belongsTo",
	HasOne:        "hasOne",
	HasMany:       "hasMany",
	BelongsToMany: "belongsToMany",
}

// String returns the schema keyword of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsMany reports whether the relation holds a collection.
func (k Kind) IsMany() bool { return k == HasMany || k == BelongsToMany }

// Nestable reports whether related records of this kind can be written
// inline with their parent.
func (k Kind) Nestable() bool { return k == HasOne || k == HasMany || k == BelongsToMany }

// ParseKind parses a relation keyword. Keywords are matched case-insensitively,
// with or without underscores ("hasMany", "has_many").
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	for k, name := range kindNames {
		if strings.ToLower(name) == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("edge: unknown relation kind %q", s)
}

// Descriptor describes one relation of an entity.
type Descriptor struct {
	// Name of the relation; the alias when one was given.
	Name string
	Kind Kind
	// Target is the related entity name.
	Target string
	// Aliased reports whether Name was given explicitly.
	Aliased bool
}

// Group is the raw declaration of one relation kind: a comma separated list
// of "Target[:alias]" entries.
type Group struct {
	Kind  string
	Value string
}

// Namer derives the default relation name from its kind and target entity.
type Namer func(k Kind, target string) string

// Parse parses one group of "Target[:alias]" entries in declaration order.
// Descriptors without an alias get their Name from namer.
func Parse(kind, value string, namer Namer) ([]*Descriptor, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	var ds []*Descriptor
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		d, err := parseEntry(k, entry)
		if err != nil {
			return nil, err
		}
		if !d.Aliased {
			d.Name = namer(k, d.Target)
		}
		ds = append(ds, d)
	}
	return ds, nil
}

func parseEntry(k Kind, entry string) (*Descriptor, error) {
	parts := strings.Split(entry, ":")
	if len(parts) > 2 {
		return nil, fmt.Errorf("edge: %s entry %q has more than one alias", k, entry)
	}
	d := &Descriptor{Kind: k, Target: strings.TrimSpace(parts[0])}
	if !token.IsIdentifier(d.Target) {
		return nil, fmt.Errorf("edge: %s entry %q has an invalid target entity", k, entry)
	}
	if len(parts) == 2 {
		d.Name = strings.TrimSpace(parts[1])
		if !token.IsIdentifier(d.Name) {
			return nil, fmt.Errorf("edge: %s entry %q has an invalid alias", k, entry)
		}
		d.Aliased = true
	}
	return d, nil
}

// Resolve parses every group and returns the relations in declaration order.
// Two relations resolving to the same name are an error.
func Resolve(groups []Group, namer Namer) ([]*Descriptor, error) {
	var (
		all  []*Descriptor
		seen = make(map[string]*Descriptor)
	)
	for _, g := range groups {
		ds, err := Parse(g.Kind, g.Value, namer)
		if err != nil {
			return nil, err
		}
		for _, d := range ds {
			if prev, ok := seen[d.Name]; ok {
				return nil, fmt.Errorf("edge: relation %q declared twice (%s %s, %s %s)", d.Name, prev.Kind, prev.Target, d.Kind, d.Target)
			}
			seen[d.Name] = d
			all = append(all, d)
		}
	}
	return all, nil
}
