// Package agent implements the pure Agent Value: an immutable record
// carrying identity, validated state, registered actions, and a pending
// instruction queue, plus the free functions (New, Set, Validate, Plan,
// Cmd) that produce new values rather than mutating in place. This
// package has no dependency on the server runtime — it is safe to use
// standalone for testing action/strategy logic.
package agent

import (
	"github.com/google/uuid"

	"github.com/basalt-labs/agentrt/action"
	"github.com/basalt-labs/agentrt/agenterrors"
	"github.com/basalt-labs/agentrt/instruction"
	"github.com/basalt-labs/agentrt/schema"
)

// Blueprint is the Go analogue of an "agent type": static metadata and
// optional lifecycle hooks shared by every Agent instantiated from it.
// A Blueprint is built once and never mutated; Agent values hold a
// pointer to it purely for read access to this shared, immutable
// descriptor — it does not make Agent state global or hidden.
type Blueprint struct {
	Kind           string
	Name           string
	Description    string
	Category       string
	Tags           []string
	Vsn            string
	Schema         schema.Schema
	Validator      schema.Validator
	DefaultActions []action.ID
	Strategy       Strategy

	// OnBeforePlan runs exactly once per Plan call, before instructions are
	// normalized and appended. A nil hook is treated as identity.
	OnBeforePlan func(a Agent, ctx map[string]any) (Agent, error)
	// OnAfterCmd runs once per Cmd call with the resulting agent and the
	// directives about to be returned; it may adjust either. A nil hook is
	// treated as identity.
	OnAfterCmd func(a Agent, directives []any) (Agent, []any)
	// Mount runs when an Agent Server starts hosting an agent built from
	// this Blueprint. A nil hook is treated as identity.
	Mount func(a Agent) (Agent, error)
	// Shutdown runs on server termination, even if state is corrupted. Its
	// error is logged but never blocks termination. A nil hook is a no-op.
	Shutdown func(a Agent) error
}

func (b *Blueprint) hook() *Blueprint {
	if b == nil {
		return &Blueprint{}
	}
	return b
}

// Agent is the pure, immutable agent record. Every operation below
// returns a new Agent; the receiver is never mutated.
type Agent struct {
	ID          string
	Blueprint   *Blueprint
	Name        string
	Description string
	Category    string
	Tags        []string
	Vsn         string

	State               map[string]any
	Actions             action.Set
	PendingInstructions []instruction.Instruction
	DirtyState          bool
	Result              map[string]any
}

// Kind returns the agent type identifier used for the Cmd/Plan
// type-safety contract.
func (a Agent) Kind() string {
	if a.Blueprint == nil {
		return ""
	}
	return a.Blueprint.Kind
}

// Options configures New.
type Options struct {
	ID           string
	InitialState map[string]any
	Actions      []action.ID
}

// New populates metadata from bp, applies schema defaults, merges the
// caller-provided initial state over them, and registers bp's default
// actions plus opts.Actions (idempotently, order preserved).
func New(bp *Blueprint, opts Options) Agent {
	bp = bp.hook()
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	state := map[string]any{}
	if bp.Validator != nil {
		for k, v := range bp.Validator.Defaults(bp.Schema) {
			state[k] = v
		}
	}
	for k, v := range opts.InitialState {
		state[k] = v
	}

	actions := action.NewSet(bp.DefaultActions...)
	for _, id := range opts.Actions {
		actions.Add(id)
	}

	return Agent{
		ID:          id,
		Blueprint:   bp,
		Name:        bp.Name,
		Description: bp.Description,
		Category:    bp.Category,
		Tags:        bp.Tags,
		Vsn:         bp.Vsn,
		State:       state,
		Actions:     actions,
	}
}

// checkKind enforces the type-safety contract: operating on an agent
// built from a different Blueprint.Kind than expected is a validation
// error, never a silent no-op.
func checkKind(expected string, a Agent) error {
	if expected == "" || a.Kind() == expected {
		return nil
	}
	return agenterrors.NewValidationError(
		"Invalid agent type",
		map[string]string{"expected": expected, "got": a.Kind()},
	)
}

// CheckKind is the exported form of the Cmd/Plan type-safety contract,
// usable by callers (e.g. the server) that dispatch to Blueprint-specific
// strategies and want to fail fast with the same error shape.
func CheckKind(expectedKind string, a Agent) error {
	return checkKind(expectedKind, a)
}
