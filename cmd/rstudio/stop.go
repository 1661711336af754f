package main

import (
	"fmt"

	"github.com/angariumd/rsm/internal/models"
	"github.com/angariumd/rsm/internal/sessions"
	"github.com/spf13/cobra"
)

func newStopCmd(a *app) *cobra.Command {
	var (
		id   string
		name string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop running RStudio Server jobs",
		Long: `Stop running RStudio Server jobs.

Without flags the only running session is stopped; when several are running,
pick one with --id or --name, or stop them all with --all.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := models.Inferred()
			switch {
			case all:
				sel = models.All()
			case cmd.Flags().Changed("id"):
				sel = models.ByID(id)
			case cmd.Flags().Changed("name"):
				sel = models.ByName(name)
			}
			return a.stop(cmd, sel)
		},
	}

	cmd.Flags().StringVarP(&id, "id", "i", "", "Slurm job id of the session")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Slurm job name of the session")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "stop every running session")
	cmd.MarkFlagsMutuallyExclusive("id", "name", "all")
	return cmd
}

func (a *app) stop(cmd *cobra.Command, sel models.Selector) error {
	dir := sessions.NewDirectory(a.scheduler)
	cancelled, err := dir.Cancel(cmd.Context(), sel)
	for _, job := range cancelled {
		fmt.Fprintf(a.out, "Registered job %s for deletion.\n", job.ID)
	}
	if err != nil {
		return err
	}
	if len(cancelled) == 0 {
		fmt.Fprintln(a.out, noSessions)
	}
	return nil
}
