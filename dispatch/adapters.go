package dispatch

import (
	"context"
	"fmt"

	"github.com/basalt-labs/agentrt/signal"
	"github.com/basalt-labs/agentrt/telemetry"
)

// LoggerAdapter formats and writes signals to a telemetry.Logger.
type LoggerAdapter struct {
	Logger telemetry.Logger
}

// Kind implements Adapter.
func (LoggerAdapter) Kind() string { return "logger" }

// Dispatch implements Adapter.
func (a LoggerAdapter) Dispatch(ctx context.Context, s signal.Signal) error {
	logger := a.Logger
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	logger.Info(ctx, "signal", "type", s.Type, "id", s.ID, "source", s.Source, "data", s.Data)
	return nil
}

// ConsoleAdapter writes signals directly to a writer (typically os.Stderr
// for the `console (err)` default dispatch entry).
type ConsoleAdapter struct {
	Write func(line string)
}

// Kind implements Adapter.
func (ConsoleAdapter) Kind() string { return "console" }

// Dispatch implements Adapter.
func (a ConsoleAdapter) Dispatch(ctx context.Context, s signal.Signal) error {
	if a.Write == nil {
		return nil
	}
	a.Write(fmt.Sprintf("[%s] id=%s source=%s data=%v", s.Type, s.ID, s.Source, s.Data))
	return nil
}

// NoopAdapter swallows every signal; useful in tests.
type NoopAdapter struct{}

// Kind implements Adapter.
func (NoopAdapter) Kind() string { return "noop" }

// Dispatch implements Adapter.
func (NoopAdapter) Dispatch(ctx context.Context, s signal.Signal) error { return nil }

// PidAdapter delivers signals to a target in-process channel, modeling
// the "deliver to a target process reference" pid adapter from a
// goroutine/channel world.
type PidAdapter struct {
	Target chan<- signal.Signal
}

// Kind implements Adapter.
func (PidAdapter) Kind() string { return "pid" }

// Dispatch implements Adapter.
func (a PidAdapter) Dispatch(ctx context.Context, s signal.Signal) error {
	if a.Target == nil {
		return fmt.Errorf("pid adapter: nil target channel")
	}
	select {
	case a.Target <- s:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
