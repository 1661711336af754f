package slurm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// 1 MiB per stream
const MaxOutputSize = 1 << 20

// Grace period between SIGTERM and SIGKILL when a command's context ends.
const KillGrace = 5 * time.Second

// Result is what a finished command left behind.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// CommandRunner runs one external command to completion. An error means the
// command could not be run at all; a non-zero exit is reported in Result.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// CommandError describes a scheduler command that exited non-zero.
type CommandError struct {
	Command  string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s had non-zero exit (%d)", e.Command, e.ExitCode)
	if out := strings.TrimSpace(e.Stderr); out != "" {
		b.WriteString(":\n")
		b.WriteString(out)
	}
	if out := strings.TrimSpace(e.Stdout); out != "" {
		b.WriteString("\n")
		b.WriteString(out)
	}
	return b.String()
}

type limitBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (l *limitBuffer) Write(p []byte) (int, error) {
	if remaining := l.limit - l.buf.Len(); remaining > 0 {
		if len(p) > remaining {
			l.buf.Write(p[:remaining])
			l.buf.WriteString("\n[OUTPUT LIMIT EXCEEDED - TRUNCATED]\n")
		} else {
			l.buf.Write(p)
		}
	}
	return len(p), nil
}

// ExecRunner runs commands as local subprocesses in their own process group.
type ExecRunner struct {
	MaxOutput int
}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{MaxOutput: MaxOutputSize}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	stdout := &limitBuffer{limit: r.MaxOutput}
	stderr := &limitBuffer{limit: r.MaxOutput}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = KillGrace

	err := cmd.Run()
	res := Result{Stdout: stdout.buf.Bytes(), Stderr: stderr.buf.Bytes()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("running %s: %w", name, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("running %s: %w", name, err)
}
