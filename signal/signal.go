// Package signal defines the typed event envelope that flows into and
// out of an agent server. Signals are created externally (or by the
// runtime itself for lifecycle/observability events) and are immutable
// once built.
package signal

import "github.com/google/uuid"

// Dispatch overrides the server's configured output adapters for a single
// signal. Nil means "use the server's default dispatch list".
type Dispatch struct {
	Kind string
	Opts map[string]any
}

// Signal is a typed event envelope.
type Signal struct {
	ID            string
	Type          string
	Source        string
	Data          any
	CorrelationID string
	CausationID   string
	Dispatch      *Dispatch
}

// Option customizes a Signal built by New.
type Option func(*Signal)

// WithSource sets the signal's origin identifier.
func WithSource(source string) Option {
	return func(s *Signal) { s.Source = source }
}

// WithCorrelationID sets the trace id carried across hops.
func WithCorrelationID(id string) Option {
	return func(s *Signal) { s.CorrelationID = id }
}

// WithCausationID sets the id of the signal that directly caused this one.
func WithCausationID(id string) Option {
	return func(s *Signal) { s.CausationID = id }
}

// WithDispatch overrides the output routing for this signal only.
func WithDispatch(kind string, opts map[string]any) Option {
	return func(s *Signal) { s.Dispatch = &Dispatch{Kind: kind, Opts: opts} }
}

// WithID forces a specific id instead of generating one. Mainly useful
// for tests asserting on a known id.
func WithID(id string) Option {
	return func(s *Signal) { s.ID = id }
}

// New constructs a Signal, assigning a fresh id if none is supplied via
// WithID.
func New(typ string, data any, opts ...Option) Signal {
	s := Signal{ID: uuid.NewString(), Type: typ, Data: data}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// CausedBy returns a copy of s with CorrelationID/CausationID derived from
// parent: the correlation id is inherited (unless s already set one), and
// the causation id is set to parent's id, linking s as caused by parent.
// This is how the scheduler stamps the instruction_result/signal_result
// signals it emits while processing an inbound signal.
func (s Signal) CausedBy(parent Signal) Signal {
	if s.CorrelationID == "" {
		s.CorrelationID = parent.CorrelationID
	}
	s.CausationID = parent.ID
	return s
}
