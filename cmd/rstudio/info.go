package main

import (
	"github.com/angariumd/rsm/internal/help"
	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show how to connect to and use an RStudio Server session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return help.Render(a.out, a.interactive)
		},
	}
}
