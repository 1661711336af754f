package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/angariumd/rsm/internal/sessions"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const noSessions = "No RStudio Server jobs currently running!"

// Longer job names are cut to keep the table aligned.
const maxNameWidth = 29

func newLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List running RStudio Server jobs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := sessions.NewDirectory(a.scheduler)
			jobs, err := dir.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(a.out, noSessions)
				return nil
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATE\tTIME")
			for _, job := range jobs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					job.ID, runewidth.Truncate(job.Name, maxNameWidth, ""), job.State, job.Time)
			}
			return w.Flush()
		},
	}
}
