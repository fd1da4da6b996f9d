package agent

import (
	"context"

	"github.com/basalt-labs/agentrt/schema"
	"github.com/basalt-labs/agentrt/statepath"
)

// Set deep-merges updates into a.State and marks DirtyState. Returns a
// new Agent; a is never mutated.
func Set(a Agent, updates map[string]any) (Agent, error) {
	a.State = statepath.DeepMerge(a.State, updates)
	a.DirtyState = true
	return a, nil
}

// ValidateOpts mirrors schema.ValidateOpts for the agent-level Validate
// entry point.
type ValidateOpts struct {
	Strict bool
}

// Validate runs a's state through its Blueprint's declared schema (a
// no-op if the Blueprint carries no schema/validator), optionally
// dropping unknown top-level keys in strict mode. On success DirtyState
// is cleared.
func Validate(ctx context.Context, a Agent, opts ValidateOpts) (Agent, error) {
	bp := a.Blueprint.hook()
	if bp.Validator == nil || bp.Schema.IsZero() {
		a.DirtyState = false
		return a, nil
	}
	validated, err := bp.Validator.Validate(ctx, a.State, bp.Schema, schema.ValidateOpts{Strict: opts.Strict})
	if err != nil {
		return a, err
	}
	a.State = validated
	a.DirtyState = false
	return a, nil
}
