package cli

import (
	"fmt"
	"path"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syssam/crudgen/backup"
	"github.com/syssam/crudgen/compiler/gen"
)

func (a *app) rollbackCmd() *cobra.Command {
	var (
		list    bool
		cleanup int
	)
	cmd := &cobra.Command{
		Use:   "rollback [backup-id]",
		Short: "Restore the files of a previous generation run",
		Long: `Restore the most recent backup, or the one with the given id. Files
that existed before the run get their previous content back; files the run
created are deleted.

Examples:
  crudgen rollback
  crudgen rollback 20240115_093000
  crudgen rollback --list
  crudgen rollback --cleanup 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings(cmd)
			if err != nil {
				return err
			}
			reporter := &printer{w: a.out}
			c, err := gen.NewConfig(append(s.Options(a.root), gen.WithLogger(a.logger()), gen.WithReporter(reporter))...)
			if err != nil {
				return err
			}
			m := backup.New(c.FS, c.BackupDir, backup.WithLogger(c.Logger))
			switch {
			case list:
				return a.listBackups(m)
			case cmd.Flags().Changed("cleanup"):
				removed, err := m.Cleanup(cleanup)
				for _, id := range removed {
					reporter.Report(gen.Event{Action: gen.ActionDeleted, Path: path.Join(c.BackupDir, id), Message: "old backup"})
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Removed %d backups\n", len(removed))
				return nil
			}
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			report, err := gen.Rollback(cmd.Context(), c, id)
			if report != nil && report.Backup != "" {
				fmt.Fprintf(a.out, "Rolled back %s: %d restored, %d deleted\n",
					report.Backup, report.Count(gen.ActionRestored), report.Count(gen.ActionDeleted))
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list the available backups")
	cmd.Flags().IntVar(&cleanup, "cleanup", 0, "delete all but the `N` most recent backups")
	cmd.MarkFlagsMutuallyExclusive("list", "cleanup")
	return cmd
}

func (a *app) listBackups(m *backup.Manager) error {
	infos, err := m.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintf(a.out, "No backups in %s\n", m.Root())
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tFILES\tENTITIES")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", info.ID, info.Timestamp.Format("2006-01-02 15:04:05"), info.Files, strings.Join(info.Entities, ", "))
	}
	return w.Flush()
}
