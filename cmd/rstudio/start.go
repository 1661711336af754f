package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/angariumd/rsm/internal/config"
	"github.com/angariumd/rsm/internal/ctxlog"
	"github.com/angariumd/rsm/internal/events"
	"github.com/angariumd/rsm/internal/images"
	"github.com/angariumd/rsm/internal/jobscript"
	"github.com/angariumd/rsm/internal/launcher"
	"github.com/angariumd/rsm/internal/models"
	"github.com/spf13/cobra"
)

func newStartCmd(a *app) *cobra.Command {
	var req models.LaunchRequest

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new RStudio Server container as cluster job",
		Long: `Start a new RStudio Server container as cluster job.

Flags that are not given fall back to the "defaults" section of the config
file; see "rstudio config" for the values in effect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyDefaults(cmd, &req, a.cfg.Defaults)
			return a.start(cmd, req)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&req.Name, "name", "n", "", "name of the Slurm job (default: defaults.name in config)")
	f.StringVarP(&req.Password, "password", "p", "", "password for the RStudio Server session (default: defaults.password in config)")
	f.StringVarP(&req.Release, "release", "r", "", "Bioconductor release of the container (default: defaults.release in config)")
	f.StringVarP(&req.Partition, "partition", "q", "", "Slurm partition to run on (default: defaults.partition in config)")
	f.IntVarP(&req.Threads, "threads", "t", 0, "number of threads requested (default: defaults.threads in config)")
	f.StringVarP(&req.Memory, "memory", "m", "", "amount of memory requested (default: defaults.memory in config)")
	f.StringVarP(&req.Bind, "bind", "b", "", "additional bind paths, Singularity syntax src[:dest[:opts]], comma-separated")
	f.BoolVarP(&req.KeepLog, "keep-log", "k", false, "keep the job output file for debugging")
	return cmd
}

func applyDefaults(cmd *cobra.Command, req *models.LaunchRequest, d config.Defaults) {
	set := func(flag string, dst *string, def string) {
		if !cmd.Flags().Changed(flag) {
			*dst = def
		}
	}
	set("name", &req.Name, d.Name)
	set("password", &req.Password, d.Password)
	set("release", &req.Release, d.Release)
	set("partition", &req.Partition, d.Partition)
	set("memory", &req.Memory, d.Memory)
	if !cmd.Flags().Changed("threads") {
		req.Threads = d.Threads
	}
}

func (a *app) start(cmd *cobra.Command, req models.LaunchRequest) error {
	ctx := cmd.Context()
	logger := ctxlog.FromContext(ctx)

	releases, err := a.catalog.Releases()
	if err != nil {
		return fmt.Errorf("listing container images: %w", err)
	}
	if len(releases) == 0 {
		return fmt.Errorf("no container images found in %s", a.cfg.ContainerDir)
	}
	req.Release = images.Canonical(req.Release)
	if !slices.Contains(releases, req.Release) {
		return fmt.Errorf("invalid release %q (choose from %s)", req.Release, strings.Join(releases, ", "))
	}

	script, err := jobscript.Resolve(a.cfg.JobScript)
	if err != nil {
		return err
	}

	spinner := launcher.NewSpinner(a.out, a.interactive)
	defer spinner.Close()
	sink := events.Multi(spinner, events.LogSink(logger))
	l := launcher.New(a.scheduler, a.prober, a.catalog, sink, launcher.Options{
		JobScript:       script,
		LogDir:          a.cfg.LogDir,
		PollInterval:    a.cfg.PollInterval,
		OutputTimeout:   a.cfg.OutputTimeout,
		ProbeTimeout:    a.cfg.ProbeTimeout,
		StateCheckEvery: a.cfg.StateCheckEvery,
		CancelOnFailure: a.cfg.CancelOnFailure,
	})

	fmt.Fprintf(a.out, "Starting RStudio Server %s on %s (%d threads, %s)\n",
		req.Release, req.Partition, req.Threads, models.FormatMemory(req.Memory))
	addr, err := l.Launch(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Your RStudio Server is running at:")
	fmt.Fprintf(a.out, "http://%s\n", addr)
	return nil
}
