package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopLoggerDiscardsAllLevels(t *testing.T) {
	t.Parallel()

	logger := NewNoopLogger()
	assert.NotPanics(t, func() {
		logger.Debug(context.Background(), "d")
		logger.Info(context.Background(), "i")
		logger.Warn(context.Background(), "w")
		logger.Error(context.Background(), "e")
	})
}

func TestNoopMetricsDiscardsAllKinds(t *testing.T) {
	t.Parallel()

	m := NewNoopMetrics()
	assert.NotPanics(t, func() {
		m.IncCounter("c", 1, "tag", "v")
		m.RecordTimer("t", time.Second)
		m.RecordGauge("g", 1.5)
	})
}

func TestNoopTracerReturnsUsableSpan(t *testing.T) {
	t.Parallel()

	tracer := NewNoopTracer()
	ctx, span := tracer.Start(context.Background(), "op")
	assert.Equal(t, context.Background(), ctx)

	assert.NotPanics(t, func() {
		span.AddEvent("evt")
		span.RecordError(nil)
		span.End()
	})

	assert.NotNil(t, tracer.Span(context.Background()))
}
