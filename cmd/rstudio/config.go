package main

import (
	"fmt"

	"github.com/angariumd/rsm/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	var initFile bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration as YAML.

With --init the configuration is written to the config file instead, which
must not exist yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !initFile {
				return config.Write(a.out, a.cfg)
			}
			if err := config.Save(a.configPath, a.cfg); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %s\n", a.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&initFile, "init", false, "write the configuration to the config file")
	return cmd
}
