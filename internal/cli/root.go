package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/syssam/crudgen"
)

// app holds the state shared by the commands of one invocation.
type app struct {
	in       io.Reader
	out, err io.Writer
	env      func(string) (string, bool)

	root    string
	config  string
	verbose bool
}

// NewRootCmd returns the crudgen command tree reading from in and writing
// to out and errOut.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, err: errOut, env: os.LookupEnv}
	cmd := &cobra.Command{
		Use:     "crudgen",
		Short:   "Generate CRUD scaffolding from a YAML entity schema",
		Version: crudgen.Version,
		Long: `crudgen reads entity definitions from a YAML schema and generates gorm
models, SQL migrations, validation rules, resources, services with nested
relation writes, chi controllers and seeders for every entity.

Every run is backed up first and can be undone with "crudgen rollback".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.PersistentFlags().StringVar(&a.root, "root", ".", "project root directory")
	cmd.PersistentFlags().StringVar(&a.config, "config", "", "settings file (default <root>/"+ConfigFile+")")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output")

	cmd.AddCommand(a.generateCmd())
	cmd.AddCommand(a.rollbackCmd())
	cmd.AddCommand(a.watchCmd())
	cmd.AddCommand(a.versionCmd())
	return cmd
}

// Execute runs the command tree on the process streams and returns the
// exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cmd := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		cmd.PrintErrln("Error:", err)
		return 1
	}
	return 0
}

// logger returns the diagnostic logger writing to the error stream.
func (a *app) logger() *slog.Logger {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.err, &slog.HandlerOptions{Level: level}))
}

// settings loads crudgen.yaml and applies the environment and cmd flags.
func (a *app) settings(cmd *cobra.Command) (*Settings, error) {
	path, required := a.config, a.config != ""
	if !required {
		path = filepath.Join(a.root, ConfigFile)
	}
	s, err := LoadSettings(path, required)
	if err != nil {
		return nil, err
	}
	if err := s.ApplyEnv(a.env); err != nil {
		return nil, err
	}
	if err := s.ApplyFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return s, nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the generator version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("crudgen %s\n", crudgen.Version)
		},
	}
}
