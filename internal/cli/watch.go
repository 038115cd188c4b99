package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// debounce is how long the schema must stay unchanged before a run starts.
// Editors often write a file in several steps.
const debounce = 300 * time.Millisecond

func (a *app) watchCmd() *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the schema file changes",
		Long: `Run a generation, then run it again every time the schema file is saved,
until interrupted. Existing files are skipped unless --force is given, in
which case they are overwritten without asking. Every run is backed up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.settings(cmd)
			if err != nil {
				return err
			}
			flags.yes = true
			return a.watch(cmd.Context(), s, flags)
		},
	}
	addGenerateFlags(cmd, &flags)
	return cmd
}

func (a *app) watch(ctx context.Context, s *Settings, flags generateFlags) error {
	schema, err := filepath.Abs(s.SchemaPath(a.root))
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// The directory is watched because editors replace files on save.
	if err := w.Add(filepath.Dir(schema)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(schema), err)
	}
	log := a.logger()
	run := func() {
		if err := a.generate(ctx, s, flags); err != nil {
			log.Error("generation failed", "error", err)
		}
	}
	run()
	fmt.Fprintf(a.out, "Watching %s\n", schema)

	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != schema || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			log.Debug("schema changed", "op", ev.Op.String())
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		case <-timer.C:
			run()
		}
	}
}
