package gen

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/syssam/crudgen/compiler/load"
	"github.com/syssam/crudgen/schema/edge"
)

// Graph holds the types of a schema with their relations resolved.
type Graph struct {
	*Config
	// Nodes are the types in declaration order.
	Nodes []*Type
	// Warnings holds non-fatal findings of the schema and its resolution.
	Warnings []string
	warned   map[string]bool
}

// NewGraph creates a graph from a loaded schema. Malformed fields, relations
// or generation toggles fail the whole graph; relations pointing nowhere and
// unusable nested requests are reported as warnings.
func NewGraph(c *Config, s *load.Schema) (*Graph, error) {
	g := &Graph{Config: c, warned: make(map[string]bool)}
	for _, w := range s.Warnings {
		g.warnf("%s", w)
	}
	tables := make(map[string]string)
	for _, e := range s.Entities {
		t, err := NewType(c, e)
		if err != nil {
			return nil, err
		}
		if other, ok := tables[t.Table()]; ok {
			return nil, NewSchemaError(t.Name, "", fmt.Sprintf("table %q is also used by %s", t.Table(), other), nil)
		}
		tables[t.Table()] = t.Name
		g.Nodes = append(g.Nodes, t)
	}
	for _, name := range c.Entities {
		if _, ok := g.typeFold(name); !ok {
			return nil, NewConfigError("Entities", name, "entity is not declared in the schema")
		}
	}
	for _, t := range g.Nodes {
		if err := g.resolveRelations(t); err != nil {
			return nil, err
		}
	}
	for _, t := range g.Nodes {
		t.Nested = g.nestedTree(t, map[string]bool{t.Name: true})
		t.With = g.resolveWith(t)
	}
	if err := g.resolveMigrations(); err != nil {
		return nil, err
	}
	return g, nil
}

// Type returns the type with the given name.
func (g *Graph) Type(name string) (*Type, bool) {
	for _, t := range g.Nodes {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

func (g *Graph) typeFold(name string) (*Type, bool) {
	for _, t := range g.Nodes {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return nil, false
}

// Selected returns the types taking part in this run, in declaration order.
func (g *Graph) Selected() []*Type {
	var nodes []*Type
	for _, t := range g.Nodes {
		if g.Config.Selected(t.Name) {
			nodes = append(nodes, t)
		}
	}
	return nodes
}

func (g *Graph) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if g.warned[msg] {
		return
	}
	g.warned[msg] = true
	g.Warnings = append(g.Warnings, msg)
}

// relationName derives the default relation name: the snake cased target,
// pluralized for collections.
func relationName(k edge.Kind, target string) string {
	if k.IsMany() {
		return snake(rules.Pluralize(target))
	}
	return snake(target)
}

func (g *Graph) resolveRelations(t *Type) error {
	groups := make([]edge.Group, len(t.def.Relations))
	for i, r := range t.def.Relations {
		groups[i] = edge.Group{Kind: r.Kind, Value: r.Value}
	}
	ds, err := edge.Resolve(groups, relationName)
	if err != nil {
		return NewRelationError(t.Name, "", "", "invalid relations", err)
	}
	for _, d := range ds {
		r := &Relation{Descriptor: d, Owner: t}
		if target, ok := g.Type(d.Target); ok {
			r.Type = target
		} else {
			g.warnf("%s: relation %q targets undeclared entity %s", t.Name, d.Name, d.Target)
		}
		if _, ok := t.fields[d.Name]; ok && d.Kind != edge.BelongsTo {
			return NewRelationError(t.Name, d.Target, d.Name, "relation name collides with a column", nil)
		}
		if r.Type != nil && (d.Kind == edge.HasOne || d.Kind == edge.HasMany) {
			if _, ok := r.Type.fields[r.ForeignKey()]; !ok {
				g.warnf("%s: relation %q expects column %s.%s referencing %s", t.Name, d.Name, r.Type.Table(), r.ForeignKey(), t.Table())
			}
		}
		t.Relations = append(t.Relations, r)
		t.relations[d.Name] = r
	}
	return nil
}

// nestedTree resolves the nested requests of t. Each related type
// contributes its own nested requests; visited holds the entities on the
// current path and stops recursion into an entity already being written.
func (g *Graph) nestedTree(t *Type, visited map[string]bool) []*Nested {
	var tree []*Nested
	for _, name := range t.def.NestedRequests {
		r, ok := t.relations[name]
		switch {
		case !ok:
			g.warnf("%s: nested request %q does not match any relation; skipped", t.Name, name)
			continue
		case !r.Kind.Nestable():
			g.warnf("%s: nested request %q is a %s relation and cannot be written inline; skipped", t.Name, name, r.Kind)
			continue
		case r.Type == nil:
			g.warnf("%s: nested request %q targets undeclared entity %s; skipped", t.Name, name, r.Target)
			continue
		}
		n := &Nested{Relation: r}
		if r.Kind != edge.BelongsToMany && !visited[r.Type.Name] {
			visited[r.Type.Name] = true
			n.Children = g.nestedTree(r.Type, visited)
			delete(visited, r.Type.Name)
		}
		tree = append(tree, n)
	}
	return tree
}

// resolveWith keeps the eager-load paths whose every segment names a relation.
func (g *Graph) resolveWith(t *Type) []string {
	var with []string
	for _, p := range t.def.With {
		if !relationPath(t, p) {
			g.warnf("%s: eager-load path %q does not match a relation; skipped", t.Name, p)
			continue
		}
		with = append(with, p)
	}
	return with
}

func relationPath(t *Type, p string) bool {
	cur := t
	for seg := range strings.SplitSeq(p, ".") {
		if cur == nil {
			return false
		}
		r, ok := cur.relations[seg]
		if !ok {
			return false
		}
		cur = r.Type
	}
	return true
}

// resolveMigrations assigns every type its migration file. An existing
// migration creating the table is reused so it is replaced as a whole;
// new ones are stamped in dependency order, referenced tables first.
func (g *Graph) resolveMigrations() error {
	now := g.Now()
	for i, t := range g.MigrationOrder() {
		matches, err := g.FS.Glob(t.MigrationGlob())
		if err != nil {
			return fmt.Errorf("gen: find migration of %s: %w", t.Name, err)
		}
		if len(matches) > 0 {
			slices.Sort(matches)
			t.migration = matches[len(matches)-1]
			continue
		}
		stamp := now.Add(time.Duration(i) * time.Second).Format("20060102150405")
		t.migration = g.Dir(ArtifactMigration) + "/" + stamp + t.migrationSuffix()
	}
	return nil
}

// MigrationOrder returns the types sorted so that tables referenced by
// foreignId columns come before the tables referencing them. Cycles keep
// declaration order.
func (g *Graph) MigrationOrder() []*Type {
	byTable := make(map[string]*Type, len(g.Nodes))
	for _, t := range g.Nodes {
		byTable[t.Table()] = t
	}
	var (
		order []*Type
		state = make(map[*Type]uint8)
		visit func(*Type)
	)
	visit = func(t *Type) {
		if state[t] != 0 {
			return
		}
		state[t] = 1
		for _, f := range t.Fields {
			if dep, ok := byTable[f.Ref()]; ok && f.IsForeignKey() && dep != t && state[dep] == 0 {
				visit(dep)
			}
		}
		state[t] = 2
		order = append(order, t)
	}
	for _, t := range g.Nodes {
		visit(t)
	}
	return order
}
