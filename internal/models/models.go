package models

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// SessionPrefix marks scheduler jobs started by this tool.
const SessionPrefix = "rstudio_"

// HandshakePrefix starts the line the job script writes once the server listens.
const HandshakePrefix = "RSTUDIO-"

type JobState string

const (
	JobStatePending     JobState = "PENDING"
	JobStateConfiguring JobState = "CONFIGURING"
	JobStateRunning     JobState = "RUNNING"
	JobStateCompleting  JobState = "COMPLETING"
	JobStateCompleted   JobState = "COMPLETED"
	JobStateCancelled   JobState = "CANCELLED"
	JobStateFailed      JobState = "FAILED"
	JobStateTimeout     JobState = "TIMEOUT"
	JobStateNodeFail    JobState = "NODE_FAIL"
	JobStateOutOfMemory JobState = "OUT_OF_MEMORY"
	JobStatePreempted   JobState = "PREEMPTED"
	JobStateBootFail    JobState = "BOOT_FAIL"
	JobStateDeadline    JobState = "DEADLINE"
)

// Terminal reports whether a job in this state will never run again.
func (s JobState) Terminal() bool {
	switch s {
	case JobStateCompleted, JobStateCancelled, JobStateFailed, JobStateTimeout,
		JobStateNodeFail, JobStateOutOfMemory, JobStatePreempted, JobStateBootFail,
		JobStateDeadline:
		return true
	}
	return false
}

// Job is one row of the scheduler queue at the time it was read.
type Job struct {
	ID    string
	Name  string
	State JobState
	Time  string
}

// IsSession reports whether the job was started by this tool and is running.
func (j Job) IsSession() bool {
	return strings.HasPrefix(j.Name, SessionPrefix) && j.State == JobStateRunning
}

// SessionName prefixes name with SessionPrefix unless it already carries it.
func SessionName(name string) string {
	if strings.HasPrefix(name, SessionPrefix) {
		return name
	}
	return SessionPrefix + name
}

type LaunchRequest struct {
	Name      string
	Password  string
	Release   string
	Partition string
	Threads   int
	Memory    string
	Bind      string
	KeepLog   bool
}

func (r LaunchRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if r.Partition == "" {
		return fmt.Errorf("partition must not be empty")
	}
	if r.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", r.Threads)
	}
	if _, err := ParseMemory(r.Memory); err != nil {
		return err
	}
	return nil
}

// Submission is what gets handed to the batch scheduler for one launch.
type Submission struct {
	Name       string
	OutputPath string
	Partition  string
	CPUs       int
	Memory     string
	Script     string
	ScriptArgs []string
}

// ParseMemory converts a Slurm memory quantity into bytes. Slurm reads a bare
// number as megabytes and the K, M, G and T suffixes as binary multiples.
func ParseMemory(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("memory must not be empty")
	}
	unit := s[len(s)-1]
	num := s
	switch unit {
	case 'K', 'k', 'M', 'm', 'G', 'g', 'T', 't':
		num = s[:len(s)-1]
	default:
		unit = 'M'
	}
	if num == "" || strings.IndexFunc(num, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, fmt.Errorf("invalid memory quantity %q (expected <number>[K|M|G|T])", s)
	}
	n, err := humanize.ParseBytes(num + strings.ToUpper(string(unit)) + "iB")
	if err != nil {
		return 0, fmt.Errorf("invalid memory quantity %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("memory must be greater than zero, got %q", s)
	}
	return n, nil
}

// FormatMemory renders a Slurm memory quantity for humans, e.g. "8G" as "8.0 GiB".
func FormatMemory(s string) string {
	n, err := ParseMemory(s)
	if err != nil {
		return s
	}
	return humanize.IBytes(n)
}
