// Package launcher turns a launch request into a reachable RStudio Server
// session: it submits the batch job, waits for the job to report its address
// and then waits for that address to answer HTTP.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/angariumd/rsm/internal/ctxlog"
	"github.com/angariumd/rsm/internal/events"
	"github.com/angariumd/rsm/internal/models"
	"github.com/google/uuid"
)

// Bound on how long cancelling a failed launch's job may take.
const cleanupTimeout = 30 * time.Second

// Job output beyond this is not read.
const maxOutputSize = 1 << 20

type Scheduler interface {
	Submit(ctx context.Context, s models.Submission) (string, error)
	State(ctx context.Context, id string) (models.JobState, bool, error)
	Cancel(ctx context.Context, id string) error
}

type Prober interface {
	Probe(ctx context.Context, addr string) (bool, error)
}

type ImageResolver interface {
	Path(release string) (string, error)
}

type Options struct {
	JobScript    string
	LogDir       string
	PollInterval time.Duration
	// Zero timeouts wait forever.
	OutputTimeout time.Duration
	ProbeTimeout  time.Duration
	// Query the job's state every n polls; zero disables the check.
	StateCheckEvery int
	CancelOnFailure bool
}

type Launcher struct {
	scheduler Scheduler
	prober    Prober
	images    ImageResolver
	sink      events.Sink
	opts      Options
}

func New(scheduler Scheduler, prober Prober, images ImageResolver, sink events.Sink, opts Options) *Launcher {
	if sink == nil {
		sink = events.Discard
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &Launcher{
		scheduler: scheduler,
		prober:    prober,
		images:    images,
		sink:      sink,
		opts:      opts,
	}
}

func (l *Launcher) emit(e events.Event) {
	e.At = time.Now()
	l.sink.Emit(e)
}

// Launch submits the session job and returns the host:port it listens on.
func (l *Launcher) Launch(ctx context.Context, req models.LaunchRequest) (addr string, err error) {
	req.Name = models.SessionName(req.Name)
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid launch request: %w", err)
	}
	image, err := l.images.Path(req.Release)
	if err != nil {
		return "", err
	}

	launchID := uuid.New()
	logger := ctxlog.FromContext(ctx).With("launch_id", launchID.String(), "name", req.Name)

	outPath, err := createOutputFile(l.opts.LogDir, launchID)
	if err != nil {
		return "", err
	}

	var jobID string
	defer func() {
		if req.KeepLog {
			logger.Info("keeping job output", "path", outPath)
			l.emit(events.Event{Type: events.TypeLogKept, JobID: jobID, Detail: outPath})
			return
		}
		if rmErr := os.Remove(outPath); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn("removing job output", "path", outPath, "error", rmErr)
		}
	}()

	scriptArgs := []string{req.Password, image}
	if req.Bind != "" {
		scriptArgs = append(scriptArgs, "--bind", req.Bind)
	}
	jobID, err = l.scheduler.Submit(ctx, models.Submission{
		Name:       req.Name,
		OutputPath: outPath,
		Partition:  req.Partition,
		CPUs:       req.Threads,
		Memory:     req.Memory,
		Script:     l.opts.JobScript,
		ScriptArgs: scriptArgs,
	})
	if err != nil {
		return "", err
	}
	logger = logger.With("job_id", jobID)
	logger.Debug("job submitted", "release", req.Release, "partition", req.Partition)
	l.emit(events.Event{Type: events.TypeJobSubmitted, JobID: jobID})

	defer func() {
		if err != nil {
			err = l.cleanup(ctx, logger, jobID, err)
		}
	}()

	output, err := l.awaitOutput(ctx, logger, jobID, outPath)
	if err != nil {
		return "", err
	}
	l.emit(events.Event{Type: events.TypeOutputReceived, JobID: jobID, Detail: output})

	addr, err = ParseHandshake(output)
	if err != nil {
		return "", err
	}
	logger.Debug("job reported address", "addr", addr)

	if err = l.awaitService(ctx, logger, jobID, addr); err != nil {
		return "", err
	}
	l.emit(events.Event{Type: events.TypeSessionReady, JobID: jobID, Detail: addr})
	return addr, nil
}

// awaitOutput polls the job output file until it holds a complete line. A
// write without a trailing newline is accepted once a second read agrees.
func (l *Launcher) awaitOutput(ctx context.Context, logger *slog.Logger, jobID, path string) (string, error) {
	wctx, cancel := withTimeout(ctx, l.opts.OutputTimeout)
	defer cancel()

	var last string
	for attempt := 1; ; attempt++ {
		output, err := readOutput(path)
		if err != nil {
			return "", err
		}
		switch {
		case output != "":
			if output[len(output)-1] == '\n' || output == last {
				return output, nil
			}
			last = output
		case l.stateCheckDue(attempt):
			if err := l.checkAlive(wctx, logger, jobID); err != nil {
				// The job may have written just before leaving the queue.
				if output, readErr := readOutput(path); readErr == nil && output != "" {
					return output, nil
				}
				return "", fmt.Errorf("%w without writing any output", err)
			}
		}

		l.emit(events.Event{Type: events.TypeAwaitingOutput, JobID: jobID, Attempt: attempt})
		if err := l.sleep(wctx); err != nil {
			return "", waitError(ctx, err, fmt.Sprintf("no output from job %s after %s", jobID, l.opts.OutputTimeout))
		}
	}
}

// awaitService probes addr until anything answers HTTP there.
func (l *Launcher) awaitService(ctx context.Context, logger *slog.Logger, jobID, addr string) error {
	wctx, cancel := withTimeout(ctx, l.opts.ProbeTimeout)
	defer cancel()

	for attempt := 1; ; attempt++ {
		ready, err := l.prober.Probe(wctx, addr)
		if err != nil {
			if wctx.Err() != nil {
				return waitError(ctx, wctx.Err(), fmt.Sprintf("%s did not answer after %s", addr, l.opts.ProbeTimeout))
			}
			return err
		}
		if ready {
			return nil
		}
		if l.stateCheckDue(attempt) {
			if err := l.checkAlive(wctx, logger, jobID); err != nil {
				return fmt.Errorf("%w before %s answered", err, addr)
			}
		}

		l.emit(events.Event{Type: events.TypeAwaitingService, JobID: jobID, Attempt: attempt, Detail: addr})
		if err := l.sleep(wctx); err != nil {
			return waitError(ctx, err, fmt.Sprintf("%s did not answer after %s", addr, l.opts.ProbeTimeout))
		}
	}
}

func (l *Launcher) stateCheckDue(attempt int) bool {
	return l.opts.StateCheckEvery > 0 && attempt%l.opts.StateCheckEvery == 0
}

// checkAlive returns ErrJobVanished once the job has left the queue or ended.
// Failing to ask the scheduler is not fatal; the next check may succeed.
func (l *Launcher) checkAlive(ctx context.Context, logger *slog.Logger, jobID string) error {
	state, ok, err := l.scheduler.State(ctx, jobID)
	switch {
	case err != nil:
		if ctx.Err() == nil {
			logger.Warn("checking job state", "error", err)
		}
		return nil
	case !ok:
		return fmt.Errorf("%w: job %s left the queue", models.ErrJobVanished, jobID)
	case state.Terminal():
		return fmt.Errorf("%w: job %s ended in state %s", models.ErrJobVanished, jobID, state)
	}
	return nil
}

// cleanup runs after a failed launch whose job was already submitted.
func (l *Launcher) cleanup(ctx context.Context, logger *slog.Logger, jobID string, cause error) error {
	if errors.Is(cause, models.ErrJobVanished) {
		return cause
	}
	if !l.opts.CancelOnFailure {
		logger.Warn("launch failed, leaving job running", "error", cause)
		return fmt.Errorf("%w\njob %s was left running; stop it with: rstudio stop --id %s", cause, jobID, jobID)
	}

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := l.scheduler.Cancel(cctx, jobID); err != nil {
		logger.Error("cancelling job after failed launch", "error", err)
		return errors.Join(cause, fmt.Errorf("cancelling job %s after failed launch: %w", jobID, err))
	}
	logger.Info("cancelled job after failed launch")
	l.emit(events.Event{Type: events.TypeJobCanceled, JobID: jobID})
	return cause
}

func (l *Launcher) sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(l.opts.PollInterval):
		return nil
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// waitError tells an interrupted wait (parent done) from an expired one.
func waitError(parent context.Context, err error, msg string) error {
	if parentErr := parent.Err(); parentErr != nil {
		return parentErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", models.ErrTimeout, msg)
	}
	return err
}

// createOutputFile creates the empty file the job's output is captured in.
// It must live on storage the compute nodes share with this host.
func createOutputFile(dir string, id uuid.UUID) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating home directory: %w", err)
		}
		dir = home
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf(".rstudio-%s.log", id))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("creating job output file: %w", err)
	}
	return path, f.Close()
}

func readOutput(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading job output: %w", err)
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, maxOutputSize))
	if err != nil {
		return "", fmt.Errorf("reading job output: %w", err)
	}
	return string(b), nil
}
