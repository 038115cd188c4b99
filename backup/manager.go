package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/syssam/crudgen"
)

// State is the lifecycle state of a Manager.
type State int

// Manager states.
const (
	Idle State = iota
	Snapshotting
	Persisted
	Restoring
	Done
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Snapshotting:
		return "snapshotting"
	case Persisted:
		return "manifest-persisted"
	case Restoring:
		return "restoring"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// idLayout is the layout of backup ids. Ids sort chronologically.
const idLayout = "20060102_150405"

// Target is one path a run could touch. An empty Entity marks a shared
// artifact such as the route registration file.
type Target struct {
	Entity   string
	Artifact string
	Path     string
}

// Op is the outcome of one file operation.
type Op string

// File operations.
const (
	OpBackedUp Op = "backed up"
	OpRecorded Op = "recorded"
	OpRestored Op = "restored"
	OpDeleted  Op = "deleted"
	OpFailed   Op = "failed"
)

// Result is the outcome of one file operation. Failures are collected, not
// returned, so one unreadable file never stops the rest.
type Result struct {
	Target
	Op  Op
	Err error
}

// Info summarizes a backup for listing.
type Info struct {
	ID        string
	Timestamp time.Time
	Entities  []string
	Files     int
}

// Manager snapshots artifact paths before a run and restores them on demand.
type Manager struct {
	fs   crudgen.Filesystem
	root string
	now  func() time.Time
	log  *slog.Logger

	mu    sync.Mutex
	state State
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for backup ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger used for per-file warnings.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// New creates a Manager storing backups under root inside fsys.
func New(fsys crudgen.Filesystem, root string, opts ...Option) *Manager {
	m := &Manager{
		fs:   fsys,
		root: path.Clean(root),
		now:  time.Now,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Root returns the backup root directory.
func (m *Manager) Root() string { return m.root }

func (m *Manager) transition(from []State, to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(from, m.state) {
		return fmt.Errorf("%w: %s cannot move to %s", ErrInvalidState, m.state, to)
	}
	m.state = to
	return nil
}

func (m *Manager) set(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Snapshot copies every existing target into a new backup directory and
// persists the manifest. A target that does not exist is recorded so that
// Rollback deletes it. Per-file failures are recorded in the manifest and
// the results. Only a failure to persist the manifest is returned as an
// error, in which case the manager goes back to Idle.
func (m *Manager) Snapshot(ctx context.Context, targets []Target) (*Manifest, []Result, error) {
	if err := m.transition([]State{Idle}, Snapshotting); err != nil {
		return nil, nil, err
	}
	ts := m.now()
	id := m.nextID(ts)
	man := newManifest(id, ts)
	results := make([]Result, 0, len(targets))
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			m.set(Idle)
			return nil, results, err
		}
		e, r := m.snapshot(id, t)
		man.add(t, e)
		results = append(results, r)
	}
	data, err := json.MarshalIndent(man, "", "  ")
	if err == nil {
		err = m.fs.WriteFile(path.Join(m.root, id, ManifestFile), data, 0o644)
	}
	if err != nil {
		m.set(Idle)
		return nil, results, crudgen.NewFileError("backup", path.Join(m.root, id, ManifestFile), err)
	}
	m.set(Persisted)
	m.log.Debug("backup persisted", "id", id, "files", man.Len())
	return man, results, nil
}

func (m *Manager) snapshot(id string, t Target) (*Entry, Result) {
	e := &Entry{OriginalPath: t.Path}
	info, err := m.fs.Stat(t.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return e, Result{Target: t, Op: OpRecorded}
	case err != nil:
		return m.failed(e, t, err)
	case info.IsDir():
		return m.failed(e, t, errors.New("path is a directory"))
	}
	e.Existed = true
	dst := path.Join(m.root, id, t.Artifact)
	if t.Entity != "" {
		dst = path.Join(dst, t.Entity)
	}
	dst = path.Join(dst, path.Base(t.Path))
	if err := crudgen.CopyFile(m.fs, t.Path, dst); err != nil {
		return m.failed(e, t, err)
	}
	e.BackupPath, e.BackedUp = &dst, true
	return e, Result{Target: t, Op: OpBackedUp}
}

func (m *Manager) failed(e *Entry, t Target, err error) (*Entry, Result) {
	err = crudgen.NewFileError("backup", t.Path, err)
	msg := err.Error()
	e.Error = &msg
	m.log.Warn("backup failed", "path", t.Path, "error", err)
	return e, Result{Target: t, Op: OpFailed, Err: err}
}

// nextID returns the id for a backup taken at ts, suffixed when a backup
// with the same second already exists.
func (m *Manager) nextID(ts time.Time) string {
	base := ts.Format(idLayout)
	id := base
	for i := 2; crudgen.Exists(m.fs, path.Join(m.root, id)); i++ {
		id = fmt.Sprintf("%s_%d", base, i)
	}
	return id
}

// Load reads the manifest of the backup id. An empty id selects the most
// recent backup.
func (m *Manager) Load(id string) (*Manifest, error) {
	if id == "" {
		ids, err := m.ids()
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, ErrNoManifest
		}
		id = ids[0]
	}
	if _, err := crudgen.CleanPath(id); err != nil || path.Base(id) != id {
		return nil, fmt.Errorf("%w: invalid backup id %q", ErrNoManifest, id)
	}
	data, err := m.fs.ReadFile(path.Join(m.root, id, ManifestFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrNoManifest, id)
	case err != nil:
		return nil, crudgen.NewFileError("read", path.Join(m.root, id, ManifestFile), err)
	}
	return decodeManifest(data)
}

// Rollback restores the backup id, or the most recent one when id is
// empty. Backed up files are copied over their originals and files that did
// not exist before the run are deleted. A missing manifest is returned
// before anything is touched. Per-file failures are collected.
func (m *Manager) Rollback(ctx context.Context, id string) (*Manifest, []Result, error) {
	man, err := m.Load(id)
	if err != nil {
		return nil, nil, err
	}
	if err := m.transition([]State{Idle, Persisted, Done}, Restoring); err != nil {
		return nil, nil, err
	}
	defer m.set(Done)
	var results []Result
	man.Walk(func(t Target, e *Entry) {
		if ctx.Err() != nil {
			return
		}
		switch {
		case e.BackedUp && e.BackupPath != nil:
			if err := crudgen.CopyFile(m.fs, *e.BackupPath, e.OriginalPath); err != nil {
				results = append(results, m.restoreFailed(t, err))
				return
			}
			results = append(results, Result{Target: t, Op: OpRestored})
		case !e.Existed && e.Error == nil:
			if !crudgen.Exists(m.fs, e.OriginalPath) {
				return
			}
			if err := m.fs.Remove(e.OriginalPath); err != nil {
				results = append(results, m.restoreFailed(t, err))
				return
			}
			results = append(results, Result{Target: t, Op: OpDeleted})
		}
	})
	return man, results, ctx.Err()
}

func (m *Manager) restoreFailed(t Target, err error) Result {
	err = crudgen.NewFileError("restore", t.Path, err)
	m.log.Warn("restore failed", "path", t.Path, "error", err)
	return Result{Target: t, Op: OpFailed, Err: err}
}

// ids returns the backup ids, newest first.
func (m *Manager) ids() ([]string, error) {
	entries, err := m.fs.ReadDir(m.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, crudgen.NewFileError("list", m.root, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() && crudgen.Exists(m.fs, path.Join(m.root, e.Name(), ManifestFile)) {
			ids = append(ids, e.Name())
		}
	}
	slices.Sort(ids)
	slices.Reverse(ids)
	return ids, nil
}

// List returns the available backups, newest first. Unreadable manifests
// are skipped.
func (m *Manager) List() ([]Info, error) {
	ids, err := m.ids()
	if err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(ids))
	for _, id := range ids {
		man, err := m.Load(id)
		if err != nil {
			m.log.Warn("unreadable backup manifest", "id", id, "error", err)
			continue
		}
		infos = append(infos, Info{
			ID:        man.ID,
			Timestamp: man.Timestamp,
			Entities:  slices.Sorted(maps.Keys(man.Entities)),
			Files:     man.Len(),
		})
	}
	return infos, nil
}

// Cleanup deletes all but the keep most recent backups and returns the
// removed ids.
func (m *Manager) Cleanup(keep int) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("backup: negative retention %d", keep)
	}
	ids, err := m.ids()
	if err != nil || len(ids) <= keep {
		return nil, err
	}
	var removed []string
	var errs []error
	for _, id := range ids[keep:] {
		if err := m.fs.RemoveAll(path.Join(m.root, id)); err != nil {
			errs = append(errs, crudgen.NewFileError("cleanup", path.Join(m.root, id), err))
			continue
		}
		removed = append(removed, id)
	}
	return removed, errors.Join(errs...)
}
