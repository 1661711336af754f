package models

import "errors"

var (
	ErrSubmissionFailed   = errors.New("job submission failed")
	ErrStartupFailed      = errors.New("session startup failed")
	ErrCancellationFailed = errors.New("job cancellation failed")
	ErrAmbiguousSelection = errors.New("ambiguous job selection")
	ErrUnknownJob         = errors.New("unknown job")
	ErrTimeout            = errors.New("timed out")
	ErrJobVanished        = errors.New("job ended early")
)
