package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/compiler/gen"
)

// ConfigFile is the project settings file read from the project root.
const ConfigFile = "crudgen.yaml"

// DefaultSchema is the schema path used when none is configured.
const DefaultSchema = "schema.yaml"

// envPrefix prefixes the environment overrides, e.g. CRUDGEN_DIALECT.
const envPrefix = "CRUDGEN_"

// Settings are the project settings. They are read from crudgen.yaml,
// then overridden by CRUDGEN_* environment variables, then by flags.
type Settings struct {
	Schema        string            `yaml:"schema"`
	Module        string            `yaml:"module"`
	Dialect       string            `yaml:"dialect"`
	Stubs         string            `yaml:"stubs"`
	BackupDir     string            `yaml:"backup_dir"`
	BackupKeep    *int              `yaml:"backup_keep"`
	RuleDepth     *int              `yaml:"rule_depth"`
	Verify        bool              `yaml:"verify"`
	SkipAuxiliary bool              `yaml:"skip_auxiliary"`
	Paths         map[string]string `yaml:"paths"`
}

// LoadSettings reads the settings file at path. A missing file yields
// empty settings unless required is set.
func LoadSettings(path string, required bool) (*Settings, error) {
	s := &Settings{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !required:
		return s, nil
	case err != nil:
		return nil, crudgen.NewInputError(path, 0, "read settings", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, crudgen.NewInputError(path, 0, "malformed settings", err)
	}
	return s, nil
}

// ApplyEnv overrides settings from CRUDGEN_* variables found by lookup.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst **int) {
		v, ok := lookup(envPrefix + key)
		if !ok {
			return
		}
		n, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
			return
		}
		*dst = &n
	}
	flag := func(key string, dst *bool) {
		v, ok := lookup(envPrefix + key)
		if !ok {
			return
		}
		b, err := cast.ToBoolE(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
			return
		}
		*dst = b
	}
	str("SCHEMA", &s.Schema)
	str("MODULE", &s.Module)
	str("DIALECT", &s.Dialect)
	str("STUBS", &s.Stubs)
	str("BACKUP_DIR", &s.BackupDir)
	num("BACKUP_KEEP", &s.BackupKeep)
	num("RULE_DEPTH", &s.RuleDepth)
	flag("VERIFY", &s.Verify)
	flag("SKIP_AUXILIARY", &s.SkipAuxiliary)
	return errors.Join(errs...)
}

// ApplyFlags overrides settings from the flags set on the command line.
// Flags that were not given leave the settings untouched.
func (s *Settings) ApplyFlags(flags *pflag.FlagSet) error {
	var err error
	if flags.Changed("schema") {
		s.Schema, err = flags.GetString("schema")
	}
	if err == nil && flags.Changed("module") {
		s.Module, err = flags.GetString("module")
	}
	if err == nil && flags.Changed("dialect") {
		s.Dialect, err = flags.GetString("dialect")
	}
	if err == nil && flags.Changed("stubs") {
		s.Stubs, err = flags.GetString("stubs")
	}
	if err == nil && flags.Changed("verify") {
		s.Verify, err = flags.GetBool("verify")
	}
	if err == nil && flags.Changed("skip-auxiliary") {
		s.SkipAuxiliary, err = flags.GetBool("skip-auxiliary")
	}
	return err
}

// SchemaPath returns the schema file path resolved against root.
func (s *Settings) SchemaPath(root string) string {
	p := s.Schema
	if p == "" {
		p = DefaultSchema
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// Options converts the settings into generator options.
func (s *Settings) Options(root string) []gen.Option {
	opts := []gen.Option{
		gen.WithRoot(root),
		gen.WithVerifyMigrations(s.Verify),
		gen.WithSkipAuxiliary(s.SkipAuxiliary),
	}
	if s.Module != "" {
		opts = append(opts, gen.WithModule(s.Module))
	}
	if s.Dialect != "" {
		opts = append(opts, gen.WithDialect(s.Dialect))
	}
	if s.Stubs != "" {
		dir := s.Stubs
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		opts = append(opts, gen.WithStubs(os.DirFS(dir)))
	}
	if s.BackupDir != "" {
		opts = append(opts, gen.WithBackupDir(s.BackupDir))
	}
	if s.BackupKeep != nil {
		opts = append(opts, gen.WithBackupKeep(*s.BackupKeep))
	}
	if s.RuleDepth != nil {
		opts = append(opts, gen.WithRuleDepth(*s.RuleDepth))
	}
	for kind, dir := range s.Paths {
		opts = append(opts, gen.WithPath(gen.Artifact(kind), dir))
	}
	return opts
}
