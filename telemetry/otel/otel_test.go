package otel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTracerStartReturnsUsableSpanWithoutConfiguredProvider(t *testing.T) {
	t.Parallel()

	tracer := NewTracer("agentrt/test")
	ctx, span := tracer.Start(context.Background(), "demo.op")
	assert.NotNil(t, ctx)

	assert.NotPanics(t, func() {
		span.AddEvent("started")
		span.RecordError(assertErr{})
		span.End()
	})
}

func TestMetricsRecordingDoesNotPanicWithoutConfiguredProvider(t *testing.T) {
	t.Parallel()

	m := NewMetrics("agentrt/test")
	assert.NotPanics(t, func() {
		m.IncCounter("agentrt.demo.counter", 1, "agent_id", "a1")
		m.RecordTimer("agentrt.demo.timer", 50*time.Millisecond, "agent_id", "a1")
		m.RecordGauge("agentrt.demo.gauge", 3.2, "agent_id", "a1")
	})
}

func TestMetricsReusesInstrumentsAcrossCalls(t *testing.T) {
	t.Parallel()

	m := NewMetrics("agentrt/test")
	m.IncCounter("agentrt.demo.repeat", 1)
	m.IncCounter("agentrt.demo.repeat", 2)

	assert.Len(t, m.counters, 1)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
