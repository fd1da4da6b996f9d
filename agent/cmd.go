package agent

import (
	"context"

	"github.com/basalt-labs/agentrt/action"
	"github.com/basalt-labs/agentrt/directive"
	"github.com/basalt-labs/agentrt/instruction"
)

// Cmd runs the synchronous pipeline: normalize spec into instructions
// (same rules as Plan), execute them through the Blueprint's configured
// Strategy (falling back to a pass-through no-op strategy if none is
// configured), and return the updated agent, any external directives,
// and the per-instruction results in execution order. Invalid
// normalization produces an Error directive with Context "normalize"
// and leaves the agent's state unchanged; the agent returned in that
// case still carries whatever PendingInstructions/State it had before
// the call.
func Cmd(ctx context.Context, a Agent, spec Spec, cctx map[string]any, sctx StrategyContext) (Agent, []directive.Directive, []action.Result) {
	instructions, err := normalize(a, spec, cctx)
	if err != nil {
		return a, []directive.Directive{directive.Error{Context: "normalize", Err: err}}, nil
	}
	return CmdInstructions(ctx, a, instructions, sctx)
}

// CmdInstructions runs already-normalized instructions through a's
// configured Strategy and OnAfterCmd hook, skipping the spec-normalize
// step Cmd otherwise performs. The scheduler uses this directly for
// instructions produced by the router, which already carry their own
// per-instruction context and options that re-normalizing would discard.
func CmdInstructions(ctx context.Context, a Agent, instructions []instruction.Instruction, sctx StrategyContext) (Agent, []directive.Directive, []action.Result) {
	bp := a.Blueprint.hook()
	strat := bp.Strategy
	if strat == nil {
		strat = passthroughStrategy{}
	}

	next, dirs, results, err := strat.Cmd(ctx, a, instructions, sctx)
	if err != nil {
		return a, []directive.Directive{directive.Error{Context: "instruction", Err: err}}, nil
	}

	if bp.OnAfterCmd != nil {
		anyDirs := make([]any, len(dirs))
		for i, d := range dirs {
			anyDirs[i] = d
		}
		adjustedAgent, adjustedDirs := bp.OnAfterCmd(next, anyDirs)
		next = adjustedAgent
		dirs = make([]directive.Directive, 0, len(adjustedDirs))
		for _, d := range adjustedDirs {
			if dd, ok := d.(directive.Directive); ok {
				dirs = append(dirs, dd)
			}
		}
	}

	return next, dirs, results
}

// passthroughStrategy is used when a Blueprint configures no Strategy:
// it returns the agent unchanged with no directives, matching the
// "empty instruction list: return (agent, [])" boundary behavior applied
// uniformly.
type passthroughStrategy struct{}

func (passthroughStrategy) Init(ctx context.Context, a Agent, sctx StrategyContext) (Agent, []directive.Directive, error) {
	return a, nil, nil
}

func (passthroughStrategy) Tick(ctx context.Context, a Agent, sctx StrategyContext) (Agent, []directive.Directive, error) {
	return a, nil, nil
}

func (passthroughStrategy) Cmd(ctx context.Context, a Agent, instructions []instruction.Instruction, sctx StrategyContext) (Agent, []directive.Directive, []action.Result, error) {
	return a, nil, nil, nil
}
