// Package directive models the tagged union of effects and directives an
// action may emit. Two closed families exist: internal Effects (state
// mutations local to the owning agent, never externally observable) and
// external Directives (spawn, emit, schedule, enqueue, ...), which flow
// to the Directive Executor. Both are modeled as interfaces with
// unexported marker methods so the set of variants is closed to this
// package; unrecognized values are rejected at the boundary with
// agenterrors.ErrValidation.
package directive

import (
	"github.com/basalt-labs/agentrt/action"
	"github.com/basalt-labs/agentrt/signal"
)

// Effect is an internal state mutation requested by an action. Effects
// are applied to the owning agent's state by the Strategy and are never
// observable outside the agent.
type Effect interface {
	isEffect()
}

// Directive is an externally observable effect requested by an action,
// handled by the Directive Executor.
type Directive interface {
	isDirective()
}

// --- Internal effects -------------------------------------------------

// SetState deep-merges Attrs into the agent's state.
type SetState struct {
	Attrs map[string]any
}

func (SetState) isEffect() {}

// ReplaceState overwrites the agent's state wholesale.
type ReplaceState struct {
	State map[string]any
}

func (ReplaceState) isEffect() {}

// DeleteKeys removes the named top-level keys from the agent's state.
type DeleteKeys struct {
	Keys []string
}

func (DeleteKeys) isEffect() {}

// SetPath sets a nested value at Path (a sequence of map keys).
type SetPath struct {
	Path  []string
	Value any
}

func (SetPath) isEffect() {}

// DeletePath removes a nested value at Path.
type DeletePath struct {
	Path []string
}

func (DeletePath) isEffect() {}

// --- External directives ----------------------------------------------

// Emit publishes a signal to the dispatch layer.
type Emit struct {
	Signal signal.Signal
}

func (Emit) isDirective() {}

// Schedule posts Message to the owning agent after DelayMs milliseconds.
type Schedule struct {
	DelayMs int64
	Message signal.Signal
}

func (Schedule) isDirective() {}

// Cron registers a repeating, time-based schedule.
type Cron struct {
	Expression string
	Message    signal.Signal
	JobID      string
	Timezone   string // defaults to UTC when empty
}

func (Cron) isDirective() {}

// Spawn adds a supervised child process under the agent.
type Spawn struct {
	Module string
	Args   map[string]any
}

func (Spawn) isDirective() {}

// Kill terminates a supervised child identified by Pid.
type Kill struct {
	Pid string
}

func (Kill) isDirective() {}

// RegisterAction adds Action to the agent's registered action set.
type RegisterAction struct {
	Action action.ID
}

func (RegisterAction) isDirective() {}

// DeregisterAction removes Action from the agent's registered action set.
type DeregisterAction struct {
	Action action.ID
}

func (DeregisterAction) isDirective() {}

// Enqueue pushes a new instruction onto the agent's pending queue and, at
// the scheduler level, onto the front of the signal queue so it runs
// immediately after the signal currently being processed completes.
type Enqueue struct {
	Action  action.ID
	Params  map[string]any
	Context map[string]any
	Opts    map[string]any
}

func (Enqueue) isDirective() {}

// StateModOp enumerates the externally requested state operations.
type StateModOp string

const (
	StateModSet    StateModOp = "set"
	StateModUpdate StateModOp = "update"
	StateModDelete StateModOp = "delete"
	StateModReset  StateModOp = "reset"
)

// StateModification is an externally requested state operation, distinct
// from the internal Effect family in that it is itself a Directive (it
// flows through the Directive Executor, not the Strategy's internal
// effect application).
type StateModification struct {
	Op    StateModOp
	Path  []string
	Value any
	// UpdateFn is used when Op == StateModUpdate: it receives the current
	// value at Path (nil if absent) and returns the new value.
	UpdateFn func(current any) any
}

func (StateModification) isDirective() {}

// Stop requests graceful server shutdown.
type Stop struct {
	Reason string
}

func (Stop) isDirective() {}

// Error signals a non-fatal failure encountered while processing an
// instruction or directive.
type Error struct {
	Context string
	Err     error
}

func (Error) isDirective() {}
