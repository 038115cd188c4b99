package gen

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"time"

	"golang.org/x/mod/modfile"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/dialect"
)

// Config holds the global codegen configuration shared by all generated types.
type Config struct {
	// FS is the target project file system. Every artifact path is
	// relative to its root.
	FS crudgen.Filesystem
	// Module is the Go module path of the target project. When empty it is
	// read from the project go.mod.
	Module string
	// Dialect selects the SQL dialect of generated migrations.
	Dialect string
	// Paths overrides the output directory of artifact kinds.
	Paths map[Artifact]string
	// Conflict decides what happens when an artifact already exists.
	Conflict ConflictPolicy
	// SkipAuxiliary turns off auxiliary artifacts such as example payloads.
	SkipAuxiliary bool
	// Stubs holds the templates artifacts are substituted into.
	// Defaults to the embedded stubs.
	Stubs fs.FS
	// BackupDir is the backup root, relative to the project root.
	BackupDir string
	// BackupKeep is the number of backups kept after a run. Zero keeps all.
	BackupKeep int
	// RuleDepth bounds how deep nested validation rules are emitted.
	RuleDepth int
	// VerifyMigrations applies each generated migration to a scratch
	// database before writing it.
	VerifyMigrations bool
	// Entities restricts generation to the named entities.
	Entities []string
	// Now is the clock used for migration and backup timestamps.
	Now func() time.Time
	// Logger receives diagnostic output.
	Logger *slog.Logger
	// Confirmer is asked before overwriting existing files.
	Confirmer Confirmer
	// Reporter receives every generation event as it happens.
	Reporter Reporter
}

// Defaults applied by NewConfig.
const (
	DefaultBackupDir  = ".crudgen/backups"
	DefaultBackupKeep = 10
	DefaultRuleDepth  = 1
	DefaultModule     = "example.com/app"
)

// DefaultConfig returns a config with default values. FS is unset.
func DefaultConfig() *Config {
	return &Config{
		Dialect:    dialect.Postgres,
		Paths:      make(map[Artifact]string),
		Conflict:   ConflictSkip,
		Stubs:      DefaultStubs(),
		BackupDir:  DefaultBackupDir,
		BackupKeep: DefaultBackupKeep,
		RuleDepth:  DefaultRuleDepth,
		Now:        time.Now,
		Logger:     slog.Default(),
	}
}

// Dir returns the output directory of an artifact kind.
func (c *Config) Dir(kind Artifact) string {
	if kind == SharedMigrationSum {
		kind = ArtifactMigration
	}
	if dir, ok := c.Paths[kind]; ok && dir != "" {
		return path.Clean(dir)
	}
	return specOf(kind).Dir
}

// ImportPath returns the Go import path of the package an artifact kind is written to.
func (c *Config) ImportPath(kind Artifact) string {
	return path.Join(c.Module, c.Dir(kind))
}

// SharedPath returns the path of a shared artifact.
func (c *Config) SharedPath(kind Artifact) string {
	return path.Join(c.Dir(kind), specOf(kind).Suffix)
}

// Selected reports whether an entity is part of this run.
func (c *Config) Selected(name string) bool {
	if len(c.Entities) == 0 {
		return true
	}
	for _, e := range c.Entities {
		if strings.EqualFold(e, name) {
			return true
		}
	}
	return false
}

// resolveModule fills Module from the project go.mod when unset.
func (c *Config) resolveModule() {
	if c.Module != "" || c.FS == nil {
		return
	}
	c.Module = DefaultModule
	data, err := c.FS.ReadFile("go.mod")
	if err != nil {
		c.logger().Debug("no go.mod found; using default module path", "module", c.Module)
		return
	}
	if mod := modfile.ModulePath(data); mod != "" {
		c.Module = mod
	}
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// ConflictPolicy decides what happens to artifacts that already exist.
type ConflictPolicy uint8

// Conflict policies.
const (
	// ConflictSkip leaves existing files untouched and reports a warning.
	ConflictSkip ConflictPolicy = iota
	// ConflictPrompt asks the Confirmer for every existing file.
	ConflictPrompt
	// ConflictOverwrite replaces existing files after one confirmation.
	ConflictOverwrite
)

var conflictNames = [...]string{
	ConflictSkip:      "skip",
	ConflictPrompt:    "prompt",
	ConflictOverwrite: "overwrite",
}

// String returns the policy name.
func (p ConflictPolicy) String() string {
	if int(p) < len(conflictNames) {
		return conflictNames[p]
	}
	return fmt.Sprintf("ConflictPolicy(%d)", p)
}

// ParseConflictPolicy parses a policy name.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	for i, name := range conflictNames {
		if strings.EqualFold(s, name) {
			return ConflictPolicy(i), nil
		}
	}
	if strings.EqualFold(s, "force") {
		return ConflictOverwrite, nil
	}
	return 0, NewConfigError("Conflict", s, "valid policies are skip, prompt and overwrite")
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// The ConfirmFunc type is an adapter to allow the use of ordinary
// functions as Confirmer.
type ConfirmFunc func(context.Context, string) (bool, error)

// Confirm calls f(ctx, question).
func (f ConfirmFunc) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}

// AlwaysConfirm answers yes to every question.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
