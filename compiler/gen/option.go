package gen

import (
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"time"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/dialect"
)

// Option configures code generation.
type Option func(*Config) error

// WithFilesystem sets the target project file system.
func WithFilesystem(fsys crudgen.Filesystem) Option {
	return func(c *Config) error {
		if fsys == nil {
			return NewConfigError("FS", nil, "file system cannot be nil")
		}
		c.FS = fsys
		return nil
	}
}

// WithRoot sets the target project directory.
func WithRoot(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Root", nil, "root directory cannot be empty")
		}
		c.FS = crudgen.DirFS(dir)
		return nil
	}
}

// WithModule sets the Go module path of the target project.
// For example: "github.com/org/bookstore".
func WithModule(module string) Option {
	return func(c *Config) error {
		if module == "" {
			return NewConfigError("Module", nil, "module cannot be empty")
		}
		c.Module = module
		return nil
	}
}

// WithDialect sets the migration dialect.
// Supported dialects: "postgres", "mysql", "sqlite".
func WithDialect(name string) Option {
	return func(c *Config) error {
		d, err := dialect.Normalize(name)
		if err != nil {
			return NewConfigError("Dialect", name, "unsupported dialect; use postgres, mysql or sqlite")
		}
		c.Dialect = d
		return nil
	}
}

// WithPath overrides the output directory of an artifact kind. Component
// aliases such as "controllers" are accepted.
func WithPath(kind Artifact, dir string) Option {
	return func(c *Config) error {
		if s, ok := LookupArtifact(string(kind)); ok {
			kind = s.Kind
		} else if kind != SharedRoutes {
			return NewConfigError("Paths", kind, "unknown artifact")
		}
		clean, err := crudgen.CleanPath(dir)
		if err != nil {
			return NewConfigError("Paths", dir, err.Error())
		}
		if c.Paths == nil {
			c.Paths = make(map[Artifact]string)
		}
		c.Paths[kind] = clean
		return nil
	}
}

// WithConflictPolicy sets how existing artifacts are treated.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(c *Config) error {
		if p > ConflictOverwrite {
			return NewConfigError("Conflict", p, "unknown conflict policy")
		}
		c.Conflict = p
		return nil
	}
}

// WithForce overwrites existing artifacts.
func WithForce() Option {
	return WithConflictPolicy(ConflictOverwrite)
}

// WithSkipAuxiliary turns off auxiliary artifacts.
func WithSkipAuxiliary(skip bool) Option {
	return func(c *Config) error {
		c.SkipAuxiliary = skip
		return nil
	}
}

// WithStubs layers custom stub templates over the embedded ones.
// A stub found in fsys takes precedence.
func WithStubs(fsys fs.FS) Option {
	return func(c *Config) error {
		if fsys == nil {
			return NewConfigError("Stubs", nil, "stub file system cannot be nil")
		}
		c.Stubs = Layered(fsys, DefaultStubs())
		return nil
	}
}

// WithBackupDir sets the backup root, relative to the project root.
func WithBackupDir(dir string) Option {
	return func(c *Config) error {
		clean, err := crudgen.CleanPath(dir)
		if err != nil {
			return NewConfigError("BackupDir", dir, err.Error())
		}
		c.BackupDir = path.Clean(clean)
		return nil
	}
}

// WithBackupKeep sets how many backups are kept. Zero keeps all.
func WithBackupKeep(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("BackupKeep", n, "cannot be negative")
		}
		c.BackupKeep = n
		return nil
	}
}

// WithRuleDepth sets how many levels of nested relations get validation rules.
func WithRuleDepth(depth int) Option {
	return func(c *Config) error {
		if depth < 0 {
			return NewConfigError("RuleDepth", depth, "cannot be negative")
		}
		c.RuleDepth = depth
		return nil
	}
}

// WithVerifyMigrations applies generated migrations to a scratch database.
func WithVerifyMigrations(verify bool) Option {
	return func(c *Config) error {
		c.VerifyMigrations = verify
		return nil
	}
}

// WithEntities restricts generation to the named entities.
func WithEntities(names ...string) Option {
	return func(c *Config) error {
		c.Entities = append(c.Entities, names...)
		return nil
	}
}

// WithClock sets the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Config) error {
		if now == nil {
			return NewConfigError("Now", nil, "clock cannot be nil")
		}
		c.Now = now
		return nil
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithConfirmer sets the overwrite confirmer.
func WithConfirmer(cf Confirmer) Option {
	return func(c *Config) error {
		c.Confirmer = cf
		return nil
	}
}

// WithReporter sets the event reporter.
func WithReporter(r Reporter) Option {
	return func(c *Config) error {
		c.Reporter = r
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the defaults and the given options.
// The file system defaults to the working directory.
func NewConfig(opts ...Option) (*Config, error) {
	c := DefaultConfig()
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if c.FS == nil {
		c.FS = crudgen.DirFS(".")
	}
	c.resolveModule()
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
