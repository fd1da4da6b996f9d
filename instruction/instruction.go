// Package instruction defines the immutable unit of planned work that
// flows from an agent's pending queue into a Strategy: an action
// identifier paired with params, context, and per-instruction options.
package instruction

import "github.com/basalt-labs/agentrt/action"

// Opts captures per-instruction execution options. Raw preserves any
// forward-compatible fields callers supply beyond the well-known ones.
type Opts struct {
	// Timeout bounds how long the action is expected to cooperatively run.
	// Zero means no explicit bound.
	Timeout int64
	// MaxRetries is the number of cooperative retries an action
	// implementation is expected to honor. Zero means no retries.
	MaxRetries int
	// ID optionally names this instruction for correlation/debugging.
	ID string
	// Priority is an optional ordering hint for strategies that reorder.
	Priority int
	// Raw holds any additional option keys not modeled above.
	Raw map[string]any
}

// Instruction is an immutable description of work: an action identifier,
// its params and context mappings, and execution options. Params and
// Context are always non-nil mappings once constructed via New.
type Instruction struct {
	Action  action.ID
	Params  map[string]any
	Context map[string]any
	Opts    Opts
}

// New builds an Instruction, normalizing nil params/context to empty
// mappings so callers never need a nil check.
func New(act action.ID, params, ctx map[string]any, opts Opts) Instruction {
	if params == nil {
		params = map[string]any{}
	}
	if ctx == nil {
		ctx = map[string]any{}
	}
	return Instruction{Action: act, Params: params, Context: ctx, Opts: opts}
}

// WithParams returns a copy of i with params merged over its existing
// params (keys in overrides win on conflict).
func (i Instruction) WithParams(overrides map[string]any) Instruction {
	merged := make(map[string]any, len(i.Params)+len(overrides))
	for k, v := range i.Params {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	i.Params = merged
	return i
}

// WithContext returns a copy of i with ctx merged over its existing
// context (caller-provided keys win).
func (i Instruction) WithContext(overrides map[string]any) Instruction {
	merged := make(map[string]any, len(i.Context)+len(overrides))
	for k, v := range i.Context {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	i.Context = merged
	return i
}
