// Package dispatch implements the ordered output-adapter list signals
// flow through on their way out of an agent server: logger, console,
// pid (in-process channel), noop, and bus (Redis pub/sub). Failures in
// one adapter are logged, not propagated, so they never abort the others.
package dispatch

import (
	"context"

	"github.com/basalt-labs/agentrt/signal"
	"github.com/basalt-labs/agentrt/telemetry"
)

// Adapter delivers a signal to one output destination.
type Adapter interface {
	Kind() string
	Dispatch(ctx context.Context, s signal.Signal) error
}

// List composes an ordered set of Adapters, dispatching to all of them
// and logging (not aborting) on individual failures.
type List struct {
	adapters []Adapter
	logger   telemetry.Logger
}

// NewList builds a List from adapters, logging failures via logger (a
// noop logger is used if logger is nil).
func NewList(logger telemetry.Logger, adapters ...Adapter) *List {
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	return &List{adapters: adapters, logger: logger}
}

// Dispatch sends s to every configured adapter, or — if s carries a
// per-signal Dispatch override — to only the adapter matching that
// override's Kind.
func (l *List) Dispatch(ctx context.Context, s signal.Signal) {
	targets := l.adapters
	if s.Dispatch != nil {
		targets = nil
		for _, a := range l.adapters {
			if a.Kind() == s.Dispatch.Kind {
				targets = append(targets, a)
			}
		}
	}
	for _, a := range targets {
		if err := a.Dispatch(ctx, s); err != nil {
			l.logger.Warn(ctx, "dispatch adapter failed", "adapter", a.Kind(), "signal_type", s.Type, "err", err)
		}
	}
}

// Adapters returns the configured adapter list, in order.
func (l *List) Adapters() []Adapter {
	out := make([]Adapter, len(l.adapters))
	copy(out, l.adapters)
	return out
}
