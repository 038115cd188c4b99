package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/dialect"
)

const settingsFile = `
schema: api/schema.yaml
module: example.com/shop
dialect: mysql
backup_keep: 3
rule_depth: 2
skip_auxiliary: true
paths:
  controllers: web/handlers
`

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadSettings(t *testing.T) {
	s, err := LoadSettings(writeSettings(t, settingsFile), true)
	require.NoError(t, err)
	assert.Equal(t, "api/schema.yaml", s.Schema)
	assert.Equal(t, "example.com/shop", s.Module)
	assert.Equal(t, "mysql", s.Dialect)
	require.NotNil(t, s.BackupKeep)
	assert.Equal(t, 3, *s.BackupKeep)
	require.NotNil(t, s.RuleDepth)
	assert.Equal(t, 2, *s.RuleDepth)
	assert.True(t, s.SkipAuxiliary)
	assert.Equal(t, map[string]string{"controllers": "web/handlers"}, s.Paths)

	t.Run("missing", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), ConfigFile)
		s, err := LoadSettings(missing, false)
		require.NoError(t, err)
		assert.Equal(t, &Settings{}, s)

		_, err = LoadSettings(missing, true)
		assert.True(t, crudgen.IsInputError(err))
	})
	t.Run("empty", func(t *testing.T) {
		s, err := LoadSettings(writeSettings(t, ""), true)
		require.NoError(t, err)
		assert.Equal(t, &Settings{}, s)
	})
	t.Run("unknown key", func(t *testing.T) {
		_, err := LoadSettings(writeSettings(t, "dialekt: mysql\n"), true)
		assert.True(t, crudgen.IsInputError(err))
	})
}

func TestSettingsPrecedence(t *testing.T) {
	s, err := LoadSettings(writeSettings(t, settingsFile), true)
	require.NoError(t, err)

	require.NoError(t, s.ApplyEnv(env(map[string]string{
		"CRUDGEN_DIALECT":     "sqlite",
		"CRUDGEN_BACKUP_KEEP": " 7 ",
		"CRUDGEN_VERIFY":      "true",
		"CRUDGEN_MODULE":      "example.com/env",
	})))
	assert.Equal(t, "sqlite", s.Dialect)
	assert.Equal(t, 7, *s.BackupKeep)
	assert.True(t, s.Verify)
	assert.Equal(t, 2, *s.RuleDepth, "unset variables keep the file value")

	cmd := &cobra.Command{Use: "generate"}
	addGenerateFlags(cmd, &generateFlags{})
	require.NoError(t, cmd.Flags().Parse([]string{"--dialect", "postgres", "--verify=false"}))
	require.NoError(t, s.ApplyFlags(cmd.Flags()))
	assert.Equal(t, "postgres", s.Dialect)
	assert.False(t, s.Verify)
	assert.Equal(t, "example.com/env", s.Module, "flags not given keep the environment value")
	assert.Equal(t, "api/schema.yaml", s.Schema, "the flag default does not override the file")
}

func TestSettingsEnvErrors(t *testing.T) {
	s := &Settings{}
	err := s.ApplyEnv(env(map[string]string{
		"CRUDGEN_RULE_DEPTH":     "deep",
		"CRUDGEN_SKIP_AUXILIARY": "maybe",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CRUDGEN_RULE_DEPTH")
	assert.Contains(t, err.Error(), "CRUDGEN_SKIP_AUXILIARY")
}

func TestSettingsOptions(t *testing.T) {
	root := t.TempDir()
	s, err := LoadSettings(writeSettings(t, settingsFile), true)
	require.NoError(t, err)

	c, err := gen.NewConfig(s.Options(root)...)
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", c.Module)
	assert.Equal(t, dialect.MySQL, c.Dialect)
	assert.Equal(t, 3, c.BackupKeep)
	assert.Equal(t, 2, c.RuleDepth)
	assert.True(t, c.SkipAuxiliary)
	assert.Equal(t, "web/handlers", c.Dir(gen.ArtifactController))
	assert.Equal(t, filepath.Join(root, "go.mod"), c.FS.Abs("go.mod"))

	assert.Equal(t, filepath.Join(root, "api", "schema.yaml"), s.SchemaPath(root))
	assert.Equal(t, filepath.Join(root, DefaultSchema), (&Settings{}).SchemaPath(root))
	assert.Equal(t, "/abs/schema.yaml", (&Settings{Schema: "/abs/schema.yaml"}).SchemaPath(root))

	_, err = gen.NewConfig((&Settings{Paths: map[string]string{"views": "web"}}).Options(root)...)
	assert.True(t, gen.IsConfigError(err))
}

func TestGenerateFlagsPolicy(t *testing.T) {
	tests := []struct {
		flags generateFlags
		want  gen.ConflictPolicy
	}{
		{generateFlags{}, gen.ConflictSkip},
		{generateFlags{force: true}, gen.ConflictOverwrite},
		{generateFlags{interactive: true}, gen.ConflictPrompt},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, err := tt.flags.policy()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err := generateFlags{force: true, interactive: true}.policy()
	assert.Error(t, err)
}
