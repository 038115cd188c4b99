package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/compiler/gen/sql"
	"github.com/syssam/crudgen/compiler/load"
)

// generateFlags are the flags of the generate and watch commands.
type generateFlags struct {
	force       bool
	interactive bool
	yes         bool
	dryRun      bool
	entities    []string
}

// policy returns the conflict policy the flags select.
func (f generateFlags) policy() (gen.ConflictPolicy, error) {
	switch {
	case f.force && f.interactive:
		return 0, errors.New("--force and --interactive cannot be combined")
	case f.force:
		return gen.ConflictOverwrite, nil
	case f.interactive:
		return gen.ConflictPrompt, nil
	default:
		return gen.ConflictSkip, nil
	}
}

func (a *app) generateCmd() *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the artifacts of the schema entities",
		Long: `Generate models, migrations, validation rules, resources, services,
controllers, seeders and example payloads for every entity of the schema.

Existing files are skipped unless --force (overwrite after one confirmation)
or --interactive (ask for every file) is given. Every path the run could
touch is backed up first.

Examples:
  crudgen generate
  crudgen generate --schema api/schema.yaml --entity Author --entity Book
  crudgen generate --force --yes --verify`,
		Aliases: []string{"gen"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.settings(cmd)
			if err != nil {
				return err
			}
			return a.generate(cmd.Context(), s, flags)
		},
	}
	addGenerateFlags(cmd, &flags)
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "ask before overwriting each existing file")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "answer yes to every confirmation")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "list the files a run would write without writing them")
	return cmd
}

// addGenerateFlags registers the flags shared by generate and watch.
func addGenerateFlags(cmd *cobra.Command, flags *generateFlags) {
	f := cmd.Flags()
	f.StringP("schema", "s", DefaultSchema, "schema file, relative to the project root")
	f.String("module", "", "Go module path of the project (default read from go.mod)")
	f.String("dialect", "", "migration dialect: postgres, mysql or sqlite (default postgres)")
	f.String("stubs", "", "directory of custom stubs overriding the built-in ones")
	f.Bool("verify", false, "apply every generated migration to a scratch database before writing it")
	f.Bool("skip-auxiliary", false, "do not generate auxiliary artifacts such as example payloads")
	f.BoolVarP(&flags.force, "force", "f", false, "overwrite existing files")
	f.StringSliceVarP(&flags.entities, "entity", "e", nil, "generate only the named entities (repeatable)")
}

// graph loads the schema and resolves it with the settings and flags.
func (a *app) graph(s *Settings, flags generateFlags) (*gen.Graph, error) {
	schema, err := load.LoadFile(s.SchemaPath(a.root))
	if err != nil {
		return nil, err
	}
	policy, err := flags.policy()
	if err != nil {
		return nil, err
	}
	opts := append(s.Options(a.root),
		gen.WithConflictPolicy(policy),
		gen.WithEntities(flags.entities...),
		gen.WithLogger(a.logger()),
		gen.WithReporter(&printer{w: a.out, quiet: !a.verbose}),
		gen.WithConfirmer(newPrompt(a.in, a.out, flags.yes)),
	)
	c, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return gen.NewGraph(c, schema)
}

// generate runs one generation and prints its summary.
func (a *app) generate(ctx context.Context, s *Settings, flags generateFlags) error {
	g, err := a.graph(s, flags)
	if err != nil {
		return err
	}
	generator := gen.NewGenerator(g).WithSynthesizer(sql.NewDialect(g))
	if flags.dryRun {
		a.plan(g, generator.Plan())
		return nil
	}
	report, err := generator.Generate(ctx)
	if report != nil {
		summary(a.out, report)
	}
	return err
}

// plan prints the files a run would write.
func (a *app) plan(g *gen.Graph, cs []gen.Candidate) {
	for _, w := range g.Warnings {
		fmt.Fprintf(a.out, "warning     %s\n", w)
	}
	for _, c := range cs {
		state := "create"
		switch {
		case !c.Exists:
		case c.Type == nil:
			state = "update"
		case g.Conflict == gen.ConflictSkip:
			state = "skip"
		default:
			state = "overwrite"
		}
		fmt.Fprintf(a.out, "%-11s %s\n", state, c.Path)
	}
	fmt.Fprintf(a.out, "Dry run: %d files planned, nothing written\n", len(cs))
}
