// Package slurm talks to the Slurm batch scheduler through its command-line
// tools (sbatch, squeue, scancel).
package slurm

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/angariumd/rsm/internal/ctxlog"
	"github.com/angariumd/rsm/internal/models"
)

// QueueFormat asks squeue for id, name, state and elapsed time.
const QueueFormat = "%i,%j,%T,%M"

type Client struct {
	runner CommandRunner
}

func NewClient(runner CommandRunner) *Client {
	return &Client{runner: runner}
}

// run executes a scheduler command and wraps a non-zero exit in sentinel.
// logArgs replaces args in the debug log when set.
func (c *Client) run(ctx context.Context, sentinel error, logArgs []string, name string, args ...string) ([]byte, error) {
	if logArgs == nil {
		logArgs = args
	}
	ctxlog.FromContext(ctx).Debug("running scheduler command", "command", name, "args", logArgs)
	res, err := c.runner.Run(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		cmdErr := &CommandError{
			Command:  name,
			Args:     args,
			ExitCode: res.ExitCode,
			Stdout:   string(res.Stdout),
			Stderr:   string(res.Stderr),
		}
		if sentinel == nil {
			return nil, cmdErr
		}
		return nil, fmt.Errorf("%w: %w", sentinel, cmdErr)
	}
	return res.Stdout, nil
}

// SubmitArgs builds the sbatch argument list for s.
func SubmitArgs(s models.Submission) []string {
	args := []string{
		"--parsable",
		"--output", s.OutputPath,
		"--job-name", s.Name,
		"--partition", s.Partition,
		"--cpus-per-task", strconv.Itoa(s.CPUs),
		"--mem", s.Memory,
		s.Script,
	}
	return append(args, s.ScriptArgs...)
}

// Submit queues the job and returns the scheduler-assigned id.
func (c *Client) Submit(ctx context.Context, s models.Submission) (string, error) {
	redacted := s
	if len(s.ScriptArgs) > 0 {
		redacted.ScriptArgs = append([]string{"<redacted>"}, s.ScriptArgs[1:]...)
	}
	out, err := c.run(ctx, models.ErrSubmissionFailed, SubmitArgs(redacted), "sbatch", SubmitArgs(s)...)
	if err != nil {
		return "", err
	}
	id, err := parseJobID(out)
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrSubmissionFailed, err)
	}
	return id, nil
}

// parseJobID reads "<id>" or "<id>;<cluster>" as printed by sbatch --parsable.
func parseJobID(out []byte) (string, error) {
	line := strings.TrimSpace(string(out))
	if i := strings.LastIndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[i+1:])
	}
	id, _, _ := strings.Cut(line, ";")
	if id == "" {
		return "", fmt.Errorf("sbatch printed no job id")
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", fmt.Errorf("sbatch printed unexpected job id %q", id)
	}
	return id, nil
}

// Queue lists the calling user's jobs in scheduler order.
func (c *Client) Queue(ctx context.Context) ([]models.Job, error) {
	out, err := c.run(ctx, nil, nil, "squeue", "--me", "--format", QueueFormat)
	if err != nil {
		return nil, fmt.Errorf("querying queue: %w", err)
	}
	return parseQueue(out)
}

func parseQueue(out []byte) ([]models.Job, error) {
	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var jobs []models.Job
	header := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing squeue output: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(record) < 4 {
			continue
		}
		// Job names may contain commas; the last two fields are always state and time.
		n := len(record)
		jobs = append(jobs, models.Job{
			ID:    strings.TrimSpace(record[0]),
			Name:  strings.Join(record[1:n-2], ","),
			State: models.JobState(strings.TrimSpace(record[n-2])),
			Time:  strings.TrimSpace(record[n-1]),
		})
	}
	return jobs, nil
}

// State returns the current state of one job. ok is false once the job has
// left the queue.
func (c *Client) State(ctx context.Context, id string) (state models.JobState, ok bool, err error) {
	out, err := c.run(ctx, nil, nil, "squeue", "--noheader", "--job", id, "--format", "%T")
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Stderr, "Invalid job id") {
			return "", false, nil
		}
		return "", false, fmt.Errorf("querying job %s: %w", id, err)
	}
	line := strings.TrimSpace(string(out))
	if line == "" {
		return "", false, nil
	}
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return models.JobState(strings.TrimSpace(line)), true, nil
}

// Cancel asks the scheduler to terminate the job.
func (c *Client) Cancel(ctx context.Context, id string) error {
	_, err := c.run(ctx, models.ErrCancellationFailed, nil, "scancel", id)
	return err
}
