package events

import (
	"context"
	"log/slog"
	"time"
)

const (
	// Submission
	TypeJobSubmitted = "JOB_SUBMITTED"
	TypeJobCanceled  = "JOB_CANCELED"

	// Handshake
	TypeAwaitingOutput = "AWAITING_OUTPUT"
	TypeOutputReceived = "OUTPUT_RECEIVED"

	// Health check
	TypeAwaitingService = "AWAITING_SERVICE"
	TypeSessionReady    = "SESSION_READY"

	TypeLogKept = "LOG_KEPT"
)

// Event describes one step of a launch. Attempt counts polls within a waiting
// state and is zero otherwise.
type Event struct {
	At      time.Time
	Type    string
	JobID   string
	Attempt int
	Detail  string
}

// Sink receives launch events synchronously, in order.
type Sink interface {
	Emit(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

type multi []Sink

func (m multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// Multi fans every event out to each sink, in argument order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// LogSink writes events to logger at debug level. Polling events are only
// logged every tenth attempt.
func LogSink(logger *slog.Logger) Sink {
	return SinkFunc(func(e Event) {
		if e.Attempt > 1 && e.Attempt%10 != 0 {
			return
		}
		attrs := []slog.Attr{slog.String("type", e.Type)}
		if e.JobID != "" {
			attrs = append(attrs, slog.String("job_id", e.JobID))
		}
		if e.Attempt > 0 {
			attrs = append(attrs, slog.Int("attempt", e.Attempt))
		}
		if e.Detail != "" {
			attrs = append(attrs, slog.String("detail", e.Detail))
		}
		logger.LogAttrs(context.Background(), slog.LevelDebug, "launch event", attrs...)
	})
}

// Recorder keeps every event it receives.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Emit(e Event) {
	r.Events = append(r.Events, e)
}

// Types returns the recorded event types with consecutive repeats collapsed.
func (r *Recorder) Types() []string {
	var types []string
	for _, e := range r.Events {
		if len(types) > 0 && types[len(types)-1] == e.Type {
			continue
		}
		types = append(types, e.Type)
	}
	return types
}

// Count returns how many events of the given type were recorded.
func (r *Recorder) Count(eventType string) int {
	n := 0
	for _, e := range r.Events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}
