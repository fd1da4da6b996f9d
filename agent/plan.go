package agent

import (
	"fmt"

	"github.com/basalt-labs/agentrt/action"
	"github.com/basalt-labs/agentrt/agenterrors"
	"github.com/basalt-labs/agentrt/instruction"
)

// Spec is the normalized-from input accepted by Plan/Cmd: either a bare
// action identifier, an (action, params) pair, or an ordered list of
// either. Build one with ActionSpec, Pair, or List.
type Spec struct {
	single *specItem
	list   []Spec
}

type specItem struct {
	action action.ID
	params map[string]any
}

// ActionSpec builds a Spec naming a single action with no params.
func ActionSpec(id action.ID) Spec {
	return Spec{single: &specItem{action: id}}
}

// Pair builds a Spec naming a single action with params.
func Pair(id action.ID, params map[string]any) Spec {
	return Spec{single: &specItem{action: id, params: params}}
}

// List builds a Spec over an ordered list of specs. A nested List inside
// items is rejected by normalize with an execution_error, matching the
// "Nested lists fail" invariant.
func List(items ...Spec) Spec {
	return Spec{list: items}
}

// normalize expands spec into a flat, ordered list of Instructions,
// validating that every action is registered on a and that params/context
// are mappings. ctx is the caller-supplied per-Plan/Cmd context, applied
// to every resulting instruction (nil becomes an empty mapping).
func normalize(a Agent, spec Spec, ctx map[string]any) ([]instruction.Instruction, error) {
	if ctx == nil {
		ctx = map[string]any{}
	}
	items, err := flatten(spec, false)
	if err != nil {
		return nil, err
	}
	out := make([]instruction.Instruction, 0, len(items))
	for _, item := range items {
		if !a.Actions.Has(item.action) {
			return nil, agenterrors.NewConfigError(
				fmt.Sprintf("Action %s not registered with agent %s", item.action, a.ID),
				map[string]any{"action": item.action, "agent_id": a.ID},
			)
		}
		params := item.params
		if params == nil {
			params = map[string]any{}
		}
		out = append(out, instruction.New(item.action, params, ctx, instruction.Opts{}))
	}
	return out, nil
}

// flatten walks a Spec tree into an ordered []*specItem. nested controls
// whether a List is itself nested inside another List, which is
// rejected.
func flatten(spec Spec, nested bool) ([]*specItem, error) {
	if spec.single != nil {
		return []*specItem{spec.single}, nil
	}
	if spec.list != nil {
		if nested {
			return nil, agenterrors.NewExecutionError("Invalid instruction format", "nested lists are not allowed")
		}
		out := make([]*specItem, 0, len(spec.list))
		for _, item := range spec.list {
			sub, err := flatten(item, true)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	}
	// Zero-value Spec: treated as an empty list (e.g. List() with no items).
	return nil, nil
}

// Plan appends one or more Instructions to a.PendingInstructions, running
// OnBeforePlan exactly once first. Returns a new Agent with DirtyState
// set to true even for an empty spec, per the empty-plan boundary
// behavior.
func Plan(a Agent, spec Spec, ctx map[string]any) (Agent, error) {
	bp := a.Blueprint.hook()
	if bp.OnBeforePlan != nil {
		next, err := bp.OnBeforePlan(a, ctx)
		if err != nil {
			return a, err
		}
		a = next
	}
	instructions, err := normalize(a, spec, ctx)
	if err != nil {
		return a, err
	}
	a.PendingInstructions = append(append([]instruction.Instruction{}, a.PendingInstructions...), instructions...)
	a.DirtyState = true
	return a, nil
}
