// Package sessions lists and stops the RStudio Server jobs of the current user.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angariumd/rsm/internal/ctxlog"
	"github.com/angariumd/rsm/internal/models"
)

type Scheduler interface {
	Queue(ctx context.Context) ([]models.Job, error)
	Cancel(ctx context.Context, id string) error
}

type Directory struct {
	scheduler Scheduler
}

func NewDirectory(scheduler Scheduler) *Directory {
	return &Directory{scheduler: scheduler}
}

// List returns the running sessions in the order the scheduler reports them.
func (d *Directory) List(ctx context.Context) ([]models.Job, error) {
	jobs, err := d.scheduler.Queue(ctx)
	if err != nil {
		return nil, err
	}
	var sessions []models.Job
	for _, j := range jobs {
		if j.IsSession() {
			sessions = append(sessions, j)
		}
	}
	return sessions, nil
}

// Resolve returns the sessions sel targets without cancelling anything.
func (d *Directory) Resolve(ctx context.Context, sel models.Selector) ([]models.Job, error) {
	sessions, err := d.List(ctx)
	if err != nil {
		return nil, err
	}

	switch sel.Kind {
	case models.SelectAll:
		return sessions, nil
	case models.SelectInferred:
		switch len(sessions) {
		case 1:
			return sessions, nil
		case 0:
			return nil, fmt.Errorf("%w: no job specified and no RStudio Server job is running", models.ErrAmbiguousSelection)
		default:
			return nil, fmt.Errorf("%w: no job specified and %d RStudio Server jobs are running (%s)",
				models.ErrAmbiguousSelection, len(sessions), ids(sessions))
		}
	case models.SelectByID:
		for _, s := range sessions {
			if s.ID == sel.Value {
				return []models.Job{s}, nil
			}
		}
		return nil, fmt.Errorf("%w: %q is not a running RStudio Server job id", models.ErrUnknownJob, sel.Value)
	case models.SelectByName:
		var matched []models.Job
		for _, s := range sessions {
			if s.Name == sel.Value {
				matched = append(matched, s)
			}
		}
		switch len(matched) {
		case 0:
			return nil, fmt.Errorf("%w: %q is not a running RStudio Server job name", models.ErrUnknownJob, sel.Value)
		case 1:
			return matched, nil
		default:
			return nil, fmt.Errorf("%w: %d jobs are named %q (%s), select one by id",
				models.ErrAmbiguousSelection, len(matched), sel.Value, ids(matched))
		}
	}
	return nil, fmt.Errorf("unsupported selector kind %d", sel.Kind)
}

// Cancel stops the sessions sel targets, one scheduler call per job, and
// returns the jobs it cancelled. Every target is attempted; failures are joined.
func (d *Directory) Cancel(ctx context.Context, sel models.Selector) ([]models.Job, error) {
	targets, err := d.Resolve(ctx, sel)
	if err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx)
	var cancelled []models.Job
	var errs []error
	for _, job := range targets {
		if err := d.scheduler.Cancel(ctx, job.ID); err != nil {
			logger.Debug("cancel failed", "job_id", job.ID, "error", err)
			errs = append(errs, fmt.Errorf("job %s: %w", job.ID, err))
			continue
		}
		logger.Debug("cancelled session", "job_id", job.ID, "name", job.Name)
		cancelled = append(cancelled, job)
	}
	return cancelled, errors.Join(errs...)
}

func ids(jobs []models.Job) string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return strings.Join(out, ", ")
}
