// Package strategy provides concrete agent.Strategy implementations.
// Direct is the default: instructions run sequentially, each success
// deep-merges its result into agent state and splits any accompanying
// effects/directives; each failure is captured as an Error directive
// without touching state, and subsequent instructions still run.
package strategy

import (
	"context"
	"fmt"

	"github.com/basalt-labs/agentrt/action"
	"github.com/basalt-labs/agentrt/agent"
	"github.com/basalt-labs/agentrt/agenterrors"
	"github.com/basalt-labs/agentrt/directive"
	"github.com/basalt-labs/agentrt/instruction"
	"github.com/basalt-labs/agentrt/statepath"
)

// Direct is the default Strategy: run each instruction in order, merging
// successful results into state and accumulating directives, without
// short-circuiting on failure.
type Direct struct{}

// Init is a no-op for Direct; it returns a unchanged.
func (Direct) Init(ctx context.Context, a agent.Agent, sctx agent.StrategyContext) (agent.Agent, []directive.Directive, error) {
	return a, nil, nil
}

// Tick is a no-op for Direct.
func (Direct) Tick(ctx context.Context, a agent.Agent, sctx agent.StrategyContext) (agent.Agent, []directive.Directive, error) {
	return a, nil, nil
}

// Cmd executes instructions sequentially per the Direct strategy contract.
func (Direct) Cmd(ctx context.Context, a agent.Agent, instructions []instruction.Instruction, sctx agent.StrategyContext) (agent.Agent, []directive.Directive, []action.Result, error) {
	return runSequential(ctx, a, instructions, sctx, false)
}

// Counting is a second Strategy exercising the "free to reorder,
// short-circuit, or batch" clause: it behaves like Direct but stops the
// batch at the first instruction error instead of continuing, while
// still upholding the at-most-once state mutation per successful
// instruction rule.
type Counting struct{}

// Init is a no-op for Counting.
func (Counting) Init(ctx context.Context, a agent.Agent, sctx agent.StrategyContext) (agent.Agent, []directive.Directive, error) {
	return a, nil, nil
}

// Tick is a no-op for Counting.
func (Counting) Tick(ctx context.Context, a agent.Agent, sctx agent.StrategyContext) (agent.Agent, []directive.Directive, error) {
	return a, nil, nil
}

// Cmd executes instructions sequentially, halting on the first failure.
func (Counting) Cmd(ctx context.Context, a agent.Agent, instructions []instruction.Instruction, sctx agent.StrategyContext) (agent.Agent, []directive.Directive, []action.Result, error) {
	return runSequential(ctx, a, instructions, sctx, true)
}

func runSequential(ctx context.Context, a agent.Agent, instructions []instruction.Instruction, sctx agent.StrategyContext, shortCircuit bool) (agent.Agent, []directive.Directive, []action.Result, error) {
	var directives []directive.Directive
	var results []action.Result
	for _, instr := range instructions {
		if sctx.Registry == nil {
			directives = append(directives, directive.Error{
				Context: "instruction",
				Err:     agenterrors.NewConfigError(fmt.Sprintf("no registry configured to resolve action %s", instr.Action), instr.Action),
			})
			if shortCircuit {
				break
			}
			continue
		}
		impl, ok := sctx.Registry.Lookup(instr.Action)
		if !ok {
			directives = append(directives, directive.Error{
				Context: "instruction",
				Err:     agenterrors.NewConfigError(fmt.Sprintf("Action %s not registered with agent %s", instr.Action, a.ID), instr.Action),
			})
			if shortCircuit {
				break
			}
			continue
		}

		execContext := mergeExtra(instr.Context, sctx.Extra)
		execContext["state"] = a.State
		execContext["opts"] = instr.Opts

		result, err := impl.Run(ctx, instr.Params, execContext)
		if err != nil {
			directives = append(directives, directive.Error{Context: "instruction", Err: err})
			if shortCircuit {
				break
			}
			continue
		}

		if result.Result != nil {
			a.State = statepath.DeepMerge(a.State, result.Result)
		}
		results = append(results, result)

		effects, dirs, unknown := directive.Split(result.Effects)
		for _, u := range unknown {
			directives = append(directives, directive.Error{
				Context: "instruction",
				Err:     agenterrors.NewValidationError("Invalid directive", u),
			})
		}
		a = applyEffects(a, effects)
		directives = append(directives, dirs...)
	}
	return a, directives, results, nil
}

func mergeExtra(ctx map[string]any, extra map[string]any) map[string]any {
	out := make(map[string]any, len(ctx)+len(extra)+1)
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range ctx {
		out[k] = v
	}
	return out
}

// applyEffects applies internal effects to a's state in declared order.
func applyEffects(a agent.Agent, effects []directive.Effect) agent.Agent {
	for _, eff := range effects {
		switch e := eff.(type) {
		case directive.SetState:
			a.State = statepath.DeepMerge(a.State, e.Attrs)
		case directive.ReplaceState:
			a.State = e.State
		case directive.DeleteKeys:
			a.State = statepath.DeleteKeys(a.State, e.Keys)
		case directive.SetPath:
			if merged, err := statepath.SetPath(a.State, e.Path, e.Value); err == nil {
				a.State = merged
			}
		case directive.DeletePath:
			a.State = statepath.DeletePath(a.State, e.Path)
		}
	}
	a.DirtyState = true
	return a
}
