package events

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	sink := Multi(a, nil, b)

	sink.Emit(Event{Type: TypeJobSubmitted, JobID: "1"})
	sink.Emit(Event{Type: TypeSessionReady, JobID: "1"})

	assert.Equal(t, []string{TypeJobSubmitted, TypeSessionReady}, a.Types())
	assert.Equal(t, a.Events, b.Events)
}

func TestRecorder_Types(t *testing.T) {
	r := &Recorder{}
	for i := 1; i <= 3; i++ {
		r.Emit(Event{Type: TypeAwaitingOutput, Attempt: i})
	}
	r.Emit(Event{Type: TypeOutputReceived})

	assert.Equal(t, []string{TypeAwaitingOutput, TypeOutputReceived}, r.Types())
	assert.Equal(t, 3, r.Count(TypeAwaitingOutput))
	assert.Equal(t, 0, r.Count(TypeJobCanceled))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := LogSink(logger)

	sink.Emit(Event{Type: TypeJobSubmitted, JobID: "77"})
	for i := 1; i <= 10; i++ {
		sink.Emit(Event{Type: TypeAwaitingOutput, JobID: "77", Attempt: i})
	}

	out := buf.String()
	assert.Contains(t, out, "type=JOB_SUBMITTED")
	assert.Contains(t, out, "job_id=77")
	assert.Contains(t, out, "attempt=1")
	assert.Contains(t, out, "attempt=10")
	assert.NotContains(t, out, "attempt=5")
}

func TestDiscard(t *testing.T) {
	Discard.Emit(Event{Type: TypeJobCanceled})
}
