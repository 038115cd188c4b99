package gen

import (
	"errors"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen/dialect"
)

func TestOptions(t *testing.T) {
	tests := []struct {
		name  string
		opt   Option
		check func(*testing.T, *Config)
	}{
		{
			name: "dialect alias",
			opt:  WithDialect("sqlite3"),
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, dialect.SQLite, c.Dialect)
			},
		},
		{
			name: "force",
			opt:  WithForce(),
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, ConflictOverwrite, c.Conflict)
			},
		},
		{
			name: "path alias",
			opt:  WithPath("controllers", "./web/handlers"),
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "web/handlers", c.Dir(ArtifactController))
			},
		},
		{
			name: "routes path",
			opt:  WithPath(SharedRoutes, "web"),
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "web/routes.go", c.SharedPath(SharedRoutes))
			},
		},
		{
			name: "backup dir",
			opt:  WithBackupDir("./var/backups/"),
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "var/backups", c.BackupDir)
			},
		},
		{
			name: "keep all backups",
			opt:  WithBackupKeep(0),
			check: func(t *testing.T, c *Config) {
				assert.Zero(t, c.BackupKeep)
			},
		},
		{
			name: "entities accumulate",
			opt: func(c *Config) error {
				return c.Apply(WithEntities("Book"), WithEntities("Author"))
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, []string{"Book", "Author"}, c.Entities)
			},
		},
		{
			name: "stubs are layered",
			opt:  WithStubs(fstest.MapFS{"model.stub": {Data: []byte("custom")}}),
			check: func(t *testing.T, c *Config) {
				model, err := LoadStub(c.Stubs, "model.stub")
				require.NoError(t, err)
				assert.Equal(t, "custom", model)
				_, err = LoadStub(c.Stubs, "service.stub")
				assert.NoError(t, err)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			require.NoError(t, tt.opt(c))
			tt.check(t, c)
		})
	}
}

func TestOptionErrors(t *testing.T) {
	tests := map[string]Option{
		"nil filesystem":   WithFilesystem(nil),
		"empty root":       WithRoot(""),
		"empty module":     WithModule(""),
		"unknown dialect":  WithDialect("oracle"),
		"unknown artifact": WithPath("views", "web/views"),
		"escaping path":    WithPath(ArtifactModel, "../models"),
		"absolute path":    WithPath(ArtifactModel, "/models"),
		"unknown policy":   WithConflictPolicy(ConflictPolicy(9)),
		"nil stubs":        WithStubs(nil),
		"empty backup dir": WithBackupDir(""),
		"negative keep":    WithBackupKeep(-1),
		"negative depth":   WithRuleDepth(-2),
		"nil clock":        WithClock(nil),
		"nil logger":       WithLogger(nil),
	}
	for name, opt := range tests {
		t.Run(name, func(t *testing.T) {
			err := opt(DefaultConfig())
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
			assert.ErrorIs(t, err, ErrMissingConfig)
		})
	}
}

func TestApplyAll(t *testing.T) {
	c := DefaultConfig()
	err := c.ApplyAll(WithModule(""), WithRuleDepth(3), WithLogger(nil), WithSkipAuxiliary(true))
	require.Error(t, err)
	assert.Equal(t, 3, c.RuleDepth)
	assert.True(t, c.SkipAuxiliary)

	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Module", ce.Option)
	assert.Contains(t, err.Error(), "logger cannot be nil")
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(WithRuleDepth(-1))
	assert.Error(t, err)

	c, err := NewConfig(WithModule("example.com/app"), WithLogger(slog.Default()))
	require.NoError(t, err)
	assert.NotNil(t, c.FS, "the file system defaults to the working directory")

	assert.Panics(t, func() { MustNewConfig(WithClock(nil)) })
}
