package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/angariumd/rsm/internal/config"
	"github.com/angariumd/rsm/internal/ctxlog"
	"github.com/angariumd/rsm/internal/images"
	"github.com/angariumd/rsm/internal/launcher"
	"github.com/angariumd/rsm/internal/netutils"
	"github.com/angariumd/rsm/internal/sessions"
	"github.com/angariumd/rsm/internal/slurm"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const version = "0.1"

type scheduler interface {
	launcher.Scheduler
	sessions.Scheduler
}

// app holds what the commands share. Nil dependencies are filled in before a
// command runs; cfg and catalog only for commands that read the config file.
type app struct {
	out         io.Writer
	errOut      io.Writer
	interactive bool

	configPath string
	verbose    bool

	cfg       *config.Config
	scheduler scheduler
	catalog   images.Catalog
	prober    launcher.Prober
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		out:         os.Stdout,
		errOut:      os.Stderr,
		interactive: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rstudio",
		Short:         "Manage RStudio Server Singularity containers running as Slurm jobs",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.rstudio.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "log scheduler calls and launch progress to stderr")

	rootCmd.AddCommand(
		withConfig(newStartCmd(a)),
		newStopCmd(a),
		newLsCmd(a),
		newInfoCmd(a),
		withConfig(newConfigCmd(a)),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))

	if a.scheduler == nil {
		a.scheduler = slurm.NewClient(slurm.NewExecRunner())
	}
	if a.prober == nil {
		a.prober = netutils.NewHTTPProber()
	}
	if !needsConfig(cmd) {
		return nil
	}

	if a.configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		a.configPath = path
	}
	if a.cfg == nil {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.catalog == nil {
		a.catalog = images.NewDirCatalog(a.cfg.ContainerDir)
	}
	return nil
}

// Commands marked with annotationConfig read the config file; the rest run
// even when it is broken.
const annotationConfig = "rstudio:config"

func withConfig(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationConfig] = "true"
	return cmd
}

func needsConfig(cmd *cobra.Command) bool {
	_, ok := cmd.Annotations[annotationConfig]
	return ok
}
