package launcher

import (
	"fmt"
	"io"

	"github.com/angariumd/rsm/internal/events"
	"github.com/gookit/color"
)

const (
	msgAwaitingOutput  = "Waiting for the job output"
	msgAwaitingService = "Waiting for RStudio Server to start"
)

var spinnerFrames = [...]string{"|", "/", "-", `\`}

// Spinner renders launch events for a person watching. On a terminal each
// waiting state is one line that is redrawn in place; elsewhere every state
// change is printed once.
type Spinner struct {
	w           io.Writer
	interactive bool

	frame   int
	current string // message of the waiting state on screen
	open    bool   // cursor is still on the redrawn line
}

func NewSpinner(w io.Writer, interactive bool) *Spinner {
	return &Spinner{w: w, interactive: interactive}
}

func (s *Spinner) Emit(e events.Event) {
	switch e.Type {
	case events.TypeJobSubmitted:
		s.println(fmt.Sprintf("Submitted batch job %s", e.JobID))
	case events.TypeAwaitingOutput:
		s.tick(msgAwaitingOutput)
	case events.TypeOutputReceived:
		if s.current == msgAwaitingOutput {
			s.done(msgAwaitingOutput)
		}
	case events.TypeAwaitingService:
		s.tick(msgAwaitingService)
	case events.TypeSessionReady:
		s.done(msgAwaitingService)
	case events.TypeJobCanceled:
		s.println(fmt.Sprintf("Cancelled job %s after the failed launch", e.JobID))
	case events.TypeLogKept:
		s.println(fmt.Sprintf("Job output kept at %s", e.Detail))
	}
}

// Close ends a line still being redrawn, so whatever is printed next starts
// on a fresh line. A launch that fails while waiting leaves one behind.
func (s *Spinner) Close() {
	s.breakLine()
	s.current = ""
}

func (s *Spinner) tick(msg string) {
	if !s.interactive {
		if s.current != msg {
			s.current = msg
			fmt.Fprintf(s.w, "%s ...\n", msg)
		}
		return
	}
	if s.current != msg {
		s.breakLine()
		s.current = msg
	}
	fmt.Fprintf(s.w, "\r%s %s", msg, spinnerFrames[s.frame%len(spinnerFrames)])
	s.frame++
	s.open = true
}

func (s *Spinner) done(msg string) {
	suffix := "Done!"
	if s.interactive {
		suffix = color.Green.Sprint(suffix)
		fmt.Fprintf(s.w, "\r%s: %s\n", msg, suffix)
	} else {
		fmt.Fprintf(s.w, "%s: %s\n", msg, suffix)
	}
	s.current = ""
	s.open = false
}

func (s *Spinner) println(msg string) {
	s.breakLine()
	fmt.Fprintln(s.w, msg)
}

func (s *Spinner) breakLine() {
	if s.open {
		fmt.Fprintln(s.w)
		s.open = false
	}
}
