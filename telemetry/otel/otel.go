// Package otel backs telemetry.Tracer and telemetry.Metrics with the
// OpenTelemetry API, delegating to whichever global TracerProvider /
// MeterProvider the host process has configured (the runtime itself
// never constructs exporters or providers — that is wiring left to the
// embedding application, matching the teacher's separation between the
// telemetry interfaces and the Temporal engine's own OTEL setup).
package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/basalt-labs/agentrt/telemetry"
)

// Tracer adapts an OpenTelemetry trace.Tracer to telemetry.Tracer.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer backed by otel.Tracer(instrumentationName).
func NewTracer(instrumentationName string) *Tracer {
	return &Tracer{tracer: otel.Tracer(instrumentationName)}
}

// Start implements telemetry.Tracer.
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, telemetry.Span) {
	newCtx, span := t.tracer.Start(ctx, name, opts...)
	return newCtx, &Span{span: span}
}

// Span implements telemetry.Tracer by returning the span already active
// on ctx, if any.
func (t *Tracer) Span(ctx context.Context) telemetry.Span {
	return &Span{span: trace.SpanFromContext(ctx)}
}

// Span adapts an OpenTelemetry trace.Span to telemetry.Span.
type Span struct {
	span trace.Span
}

// End implements telemetry.Span.
func (s *Span) End(opts ...trace.SpanEndOption) { s.span.End(opts...) }

// AddEvent implements telemetry.Span by recording an event named name.
// The variadic attrs are not attached to the event; OTEL attributes can
// still be passed via opts on Start.
func (s *Span) AddEvent(name string, attrs ...any) {
	s.span.AddEvent(name)
}

// SetStatus implements telemetry.Span.
func (s *Span) SetStatus(code otelcodes.Code, description string) {
	s.span.SetStatus(code, description)
}

// RecordError implements telemetry.Span.
func (s *Span) RecordError(err error, opts ...trace.EventOption) {
	s.span.RecordError(err, opts...)
}

// Metrics adapts an OpenTelemetry metric.Meter to telemetry.Metrics,
// lazily creating one instrument per metric name on first use.
type Metrics struct {
	meter      metric.Meter
	counters   map[string]metric.Float64Counter
	histograms map[string]metric.Float64Histogram
	gauges     map[string]metric.Float64Gauge
}

// NewMetrics returns Metrics backed by otel.Meter(instrumentationName).
func NewMetrics(instrumentationName string) *Metrics {
	return &Metrics{
		meter:      otel.Meter(instrumentationName),
		counters:   make(map[string]metric.Float64Counter),
		histograms: make(map[string]metric.Float64Histogram),
		gauges:     make(map[string]metric.Float64Gauge),
	}
}

func toAttrs(tags []string) []attributeKV {
	attrs := make([]attributeKV, 0, len(tags)/2)
	for i := 0; i+1 < len(tags); i += 2 {
		attrs = append(attrs, attributeKV{key: tags[i], value: tags[i+1]})
	}
	return attrs
}

type attributeKV struct {
	key   string
	value string
}

func attrsToOtel(attrs []attributeKV) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, attribute.String(a.key, a.value))
	}
	return out
}

// IncCounter implements telemetry.Metrics.
func (m *Metrics) IncCounter(name string, value float64, tags ...string) {
	c, ok := m.counters[name]
	if !ok {
		var err error
		c, err = m.meter.Float64Counter(name)
		if err != nil {
			return
		}
		m.counters[name] = c
	}
	c.Add(context.Background(), value, metric.WithAttributes(attrsToOtel(toAttrs(tags))...))
}

// RecordTimer implements telemetry.Metrics, recording duration in
// milliseconds on a histogram.
func (m *Metrics) RecordTimer(name string, duration time.Duration, tags ...string) {
	h, ok := m.histograms[name]
	if !ok {
		var err error
		h, err = m.meter.Float64Histogram(name)
		if err != nil {
			return
		}
		m.histograms[name] = h
	}
	h.Record(context.Background(), float64(duration.Milliseconds()), metric.WithAttributes(attrsToOtel(toAttrs(tags))...))
}

// RecordGauge implements telemetry.Metrics.
func (m *Metrics) RecordGauge(name string, value float64, tags ...string) {
	g, ok := m.gauges[name]
	if !ok {
		var err error
		g, err = m.meter.Float64Gauge(name)
		if err != nil {
			return
		}
		m.gauges[name] = g
	}
	g.Record(context.Background(), value, metric.WithAttributes(attrsToOtel(toAttrs(tags))...))
}
