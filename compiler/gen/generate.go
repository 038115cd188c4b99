package gen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/backup"
)

// Generator runs a generation: it backs up every path the run could touch,
// renders the enabled artifacts of each selected type through a
// Synthesizer, applies the conflict policy and writes the results.
//
// Example:
//
//	import "github.com/syssam/crudgen/compiler/gen/sql"
//
//	gen := gen.NewGenerator(graph)
//	gen.WithSynthesizer(sql.NewDialect(graph))
//	report, err := gen.Generate(ctx)
type Generator struct {
	graph  *Graph
	writer *Writer

	synth Synthesizer
	// Optional capabilities detected on the synthesizer.
	verifier MigrationVerifier
	summer   MigrationSummer
	checker  SchemaChecker
}

// NewGenerator creates a generator for the graph.
// WithSynthesizer must be called before Generate.
func NewGenerator(g *Graph) *Generator {
	return &Generator{
		graph:  g,
		writer: NewWriter(g.FS, g.logger()),
	}
}

// WithSynthesizer sets the synthesizer and detects its optional capabilities.
func (g *Generator) WithSynthesizer(s Synthesizer) *Generator {
	if s == nil {
		return g
	}
	g.synth = s
	if v, ok := s.(MigrationVerifier); ok {
		g.verifier = v
	}
	if m, ok := s.(MigrationSummer); ok {
		g.summer = m
	}
	if c, ok := s.(SchemaChecker); ok {
		g.checker = c
	}
	return g
}

// Candidate is a path a run could write.
type Candidate struct {
	// Type is nil for shared artifacts.
	Type     *Type
	Artifact Artifact
	Path     string
	// Exists reports whether the path exists before the run.
	Exists bool
}

// Entity returns the entity name of the candidate, empty for shared artifacts.
func (c Candidate) Entity() string {
	if c.Type == nil {
		return ""
	}
	return c.Type.Name
}

// Plan returns every path the run could write, in generation order,
// without touching the file system.
func (g *Generator) Plan() []Candidate {
	var cs []Candidate
	var routes, sumfile bool
	fsys := g.graph.FS
	for _, t := range g.graph.Selected() {
		for _, s := range Artifacts {
			if !t.Enabled(s.Kind) {
				continue
			}
			p := t.Path(s.Kind)
			cs = append(cs, Candidate{Type: t, Artifact: s.Kind, Path: p, Exists: crudgen.Exists(fsys, p)})
			routes = routes || s.Kind == ArtifactController
			sumfile = sumfile || s.Kind == ArtifactMigration
		}
	}
	if routes {
		p := g.graph.SharedPath(SharedRoutes)
		cs = append(cs, Candidate{Artifact: SharedRoutes, Path: p, Exists: crudgen.Exists(fsys, p)})
	}
	if sumfile && g.summer != nil {
		p := g.graph.SharedPath(SharedMigrationSum)
		cs = append(cs, Candidate{Artifact: SharedMigrationSum, Path: p, Exists: crudgen.Exists(fsys, p)})
	}
	return cs
}

// Generate runs the generation. Fatal errors (a declined overwrite
// confirmation, a backup that cannot be persisted, a cancelled context)
// are returned before or instead of writing. Failures of single artifacts
// are recorded in the report and the run continues; the returned error
// then wraps ErrGenerationFailed.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	if g.synth == nil {
		return nil, NewConfigError("Synthesizer", nil, "no synthesizer set: call WithSynthesizer() before Generate()")
	}
	if g.graph.Conflict == ConflictPrompt && g.graph.Confirmer == nil {
		return nil, NewConfigError("Confirmer", nil, "the prompt conflict policy requires a confirmer")
	}
	report := NewReport(g.graph.Reporter)
	for _, w := range g.graph.Warnings {
		report.Warn("", "%s", w)
	}
	if g.checker != nil {
		for _, w := range g.checker.CheckSchema(g.graph.MigrationOrder()) {
			report.Warn("", "%s", w)
		}
	}
	candidates := g.Plan()
	if err := g.confirmOverwrite(ctx, candidates); err != nil {
		return report, err
	}
	if err := g.backup(ctx, report, candidates); err != nil {
		return report, err
	}
	var (
		controllers []*Type
		migrations  bool
	)
	for _, c := range candidates {
		if c.Type == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		action, err := g.generate(ctx, report, c)
		if err != nil {
			return report, err
		}
		switch {
		case action == ActionFailed:
		case c.Artifact == ArtifactController:
			controllers = append(controllers, c.Type)
		case c.Artifact == ArtifactMigration && action != ActionSkipped:
			migrations = true
		}
	}
	if len(controllers) > 0 {
		g.writeRoutes(report, controllers)
	}
	if migrations && g.summer != nil {
		g.updateSum(ctx, report)
	}
	g.cleanup(report)
	if n := report.Count(ActionFailed); n > 0 {
		return report, fmt.Errorf("%w: %d artifacts failed", ErrGenerationFailed, n)
	}
	return report, nil
}

// confirmOverwrite asks once before a forced run replaces existing files.
// A negative answer aborts the run before any file is touched.
func (g *Generator) confirmOverwrite(ctx context.Context, cs []Candidate) error {
	if g.graph.Conflict != ConflictOverwrite {
		return nil
	}
	n := 0
	for _, c := range cs {
		if c.Exists && c.Type != nil {
			n++
		}
	}
	if n == 0 || g.graph.Confirmer == nil {
		return nil
	}
	ok, err := g.graph.Confirmer.Confirm(ctx, fmt.Sprintf("Overwrite %d existing files?", n))
	if err != nil {
		return fmt.Errorf("confirm overwrite: %w", err)
	}
	if !ok {
		return crudgen.ErrAborted
	}
	return nil
}

// backup snapshots every candidate. Per-file failures become warnings; a
// manifest that cannot be persisted stops the run.
func (g *Generator) backup(ctx context.Context, report *Report, cs []Candidate) error {
	if len(cs) == 0 {
		return nil
	}
	targets := make([]backup.Target, len(cs))
	for i, c := range cs {
		targets[i] = backup.Target{Entity: c.Entity(), Artifact: string(c.Artifact), Path: c.Path}
	}
	m := g.backups()
	man, results, err := m.Snapshot(ctx, targets)
	for _, r := range results {
		switch r.Op {
		case backup.OpBackedUp:
			report.Add(Event{Action: ActionBackedUp, Entity: r.Entity, Artifact: Artifact(r.Artifact), Path: r.Path})
		case backup.OpFailed:
			report.Add(Event{Action: ActionWarning, Entity: r.Entity, Artifact: Artifact(r.Artifact), Path: r.Path, Message: "backup failed", Err: r.Err})
		}
	}
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	report.Backup = man.ID
	return nil
}

func (g *Generator) backups() *backup.Manager {
	return backup.New(g.graph.FS, g.graph.BackupDir,
		backup.WithClock(g.graph.Now),
		backup.WithLogger(g.graph.logger()),
	)
}

// cleanup applies the backup retention. Failures are warnings.
func (g *Generator) cleanup(report *Report) {
	if g.graph.BackupKeep <= 0 {
		return
	}
	removed, err := g.backups().Cleanup(g.graph.BackupKeep)
	if err != nil {
		report.Warn("", "backup cleanup: %v", err)
	}
	for _, id := range removed {
		report.Add(Event{Action: ActionDeleted, Path: path.Join(g.graph.BackupDir, id), Message: "old backup"})
	}
}

// generate renders and writes one artifact and returns the reported action.
func (g *Generator) generate(ctx context.Context, report *Report, c Candidate) (Action, error) {
	t, kind := c.Type, c.Artifact
	ev := Event{Entity: t.Name, Artifact: kind, Path: c.Path}
	if c.Exists {
		overwrite, err := g.resolveConflict(ctx, c)
		if err != nil {
			return ActionFailed, err
		}
		if !overwrite {
			ev.Action, ev.Err = ActionSkipped, crudgen.NewConflictError(t.Name, string(kind), c.Path)
			report.Add(ev)
			return ev.Action, nil
		}
	}
	src, err := g.render(report, t, kind)
	if err == nil && kind == ArtifactMigration && g.graph.VerifyMigrations && g.verifier != nil {
		if verr := g.verifier.VerifyMigration(ctx, src); verr != nil {
			err = NewGenerationError(t.Name, kind, c.Path, "migration does not apply", verr)
		}
	}
	if err == nil {
		err = g.writer.Write(c.Path, src)
	}
	if err != nil {
		ev.Action, ev.Err = ActionFailed, err
		report.Add(ev)
		return ev.Action, nil
	}
	ev.Action = ActionCreated
	if c.Exists {
		ev.Action = ActionOverwritten
	}
	report.Add(ev)
	return ev.Action, nil
}

// resolveConflict reports whether an existing artifact is replaced.
func (g *Generator) resolveConflict(ctx context.Context, c Candidate) (bool, error) {
	switch g.graph.Conflict {
	case ConflictOverwrite:
		return true, nil
	case ConflictPrompt:
		ok, err := g.graph.Confirmer.Confirm(ctx, fmt.Sprintf("%s %s already exists at %s. Overwrite?", c.Entity(), c.Artifact, c.Path))
		if err != nil {
			return false, fmt.Errorf("confirm overwrite of %s: %w", c.Path, err)
		}
		return ok, nil
	default:
		return false, nil
	}
}

// render synthesizes an artifact and substitutes it into its stub.
func (g *Generator) render(report *Report, t *Type, kind Artifact) ([]byte, error) {
	s := specOf(kind)
	if s.Stub == "" {
		src, err := g.synth.Example(t)
		if err != nil {
			return nil, NewGenerationError(t.Name, kind, t.Path(kind), "synthesis failed", err)
		}
		return src, nil
	}
	frags, err := g.synthesize(t, kind)
	if err != nil {
		return nil, NewGenerationError(t.Name, kind, t.Path(kind), "synthesis failed", err)
	}
	tmpl, err := LoadStub(g.graph.Stubs, s.Stub)
	if err != nil {
		if bare, ok := frags[FallbackMigration]; ok && kind == ArtifactMigration && IsStubError(err) {
			report.Warn(t.Name, "%v; writing a bare table migration", err)
			return []byte(bare), nil
		}
		return nil, NewGenerationError(t.Name, kind, t.Path(kind), "missing stub", err)
	}
	values := t.Placeholders()
	maps.Copy(values, frags)
	out, missing := Substitute(tmpl, values)
	if len(missing) > 0 {
		report.Warn(t.Name, "stub %s has unresolved placeholders %v", s.Stub, missing)
	}
	return []byte(out), nil
}

func (g *Generator) synthesize(t *Type, kind Artifact) (Fragments, error) {
	switch kind {
	case ArtifactMigration:
		return g.synth.Migration(t)
	case ArtifactModel:
		return g.synth.Model(t)
	case ArtifactRequest:
		return g.synth.Request(t)
	case ArtifactResource:
		return g.synth.Resource(t)
	case ArtifactCollection:
		return g.synth.Collection(t)
	case ArtifactService:
		return g.synth.Service(t)
	case ArtifactController:
		return g.synth.Controller(t)
	case ArtifactSeeder:
		return g.synth.Seeder(t)
	default:
		return nil, fmt.Errorf("no synthesizer for artifact %q", kind)
	}
}

// writeRoutes registers the controllers in the shared route file, creating
// it from its stub when missing. Registration lines already present are
// not added again.
func (g *Generator) writeRoutes(report *Report, types []*Type) {
	p := g.graph.SharedPath(SharedRoutes)
	ev := Event{Artifact: SharedRoutes, Path: p}
	data, err := g.graph.FS.ReadFile(p)
	existed := err == nil
	src := string(data)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		tmpl, serr := LoadStub(g.graph.Stubs, specOf(SharedRoutes).Stub)
		if serr != nil {
			ev.Action, ev.Err = ActionFailed, serr
			report.Add(ev)
			return
		}
		src, _ = Substitute(tmpl, map[string]string{
			"routes_pkg":        path.Base(g.graph.Dir(SharedRoutes)),
			"controller_import": g.graph.ImportPath(ArtifactController),
			"module":            g.graph.Module,
			"generator_version": crudgen.Version,
		})
	case err != nil:
		ev.Action, ev.Err = ActionFailed, crudgen.NewFileError("read", p, err)
		report.Add(ev)
		return
	}
	changed := !existed
	for _, t := range types {
		var added bool
		src, added = InsertRoute(src, g.synth.Route(t))
		changed = changed || added
	}
	if !changed {
		ev.Action, ev.Message = ActionSkipped, "routes already registered"
		report.Add(ev)
		return
	}
	if err := g.writer.Write(p, []byte(src)); err != nil {
		ev.Action, ev.Err = ActionFailed, err
		report.Add(ev)
		return
	}
	ev.Action = ActionCreated
	if existed {
		ev.Action = ActionOverwritten
	}
	report.Add(ev)
}

// updateSum rewrites the migration directory integrity file.
func (g *Generator) updateSum(ctx context.Context, report *Report) {
	p := g.graph.SharedPath(SharedMigrationSum)
	existed := crudgen.Exists(g.graph.FS, p)
	ev := Event{Artifact: SharedMigrationSum, Path: p, Action: ActionCreated}
	if existed {
		ev.Action = ActionOverwritten
	}
	if err := g.summer.UpdateSum(ctx, g.graph.FS.Abs(g.graph.Dir(SharedMigrationSum))); err != nil {
		ev.Action, ev.Err = ActionFailed, NewGenerationError("", SharedMigrationSum, p, "update integrity file", err)
	}
	report.Add(ev)
}

// Rollback restores the backup id, or the most recent one when id is empty,
// and reports every restored and deleted file.
func Rollback(ctx context.Context, c *Config, id string) (*Report, error) {
	report := NewReport(c.Reporter)
	m := backup.New(c.FS, c.BackupDir, backup.WithLogger(c.logger()))
	man, results, err := m.Rollback(ctx, id)
	if man != nil {
		report.Backup = man.ID
	}
	for _, r := range results {
		ev := Event{Entity: r.Entity, Artifact: Artifact(r.Artifact), Path: r.Path, Err: r.Err}
		switch r.Op {
		case backup.OpRestored:
			ev.Action = ActionRestored
		case backup.OpDeleted:
			ev.Action = ActionDeleted
		default:
			ev.Action = ActionFailed
		}
		report.Add(ev)
	}
	if err != nil {
		return report, err
	}
	if n := report.Count(ActionFailed); n > 0 {
		return report, fmt.Errorf("rollback: %d files could not be restored", n)
	}
	return report, nil
}
