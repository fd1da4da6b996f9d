package agent

import (
	"context"

	"github.com/basalt-labs/agentrt/action"
	"github.com/basalt-labs/agentrt/directive"
	"github.com/basalt-labs/agentrt/instruction"
)

// StrategyContext groups the collaborators a Strategy needs to execute
// instructions: the action registry used to resolve Instruction.Action,
// and any execution-scoped values the caller wants threaded to every
// action invocation (e.g. a trace id, a logger).
type StrategyContext struct {
	Registry action.Registry
	Extra    map[string]any
}

// Strategy is a pluggable execution policy turning a list of
// instructions into (new agent, directives). Defined here (consumer
// side) so concrete strategy implementations (package strategy) can
// depend on package agent without creating an import cycle.
type Strategy interface {
	// Init runs once on server start.
	Init(ctx context.Context, a Agent, sctx StrategyContext) (Agent, []directive.Directive, error)
	// Tick runs on scheduler ticks; may be a no-op.
	Tick(ctx context.Context, a Agent, sctx StrategyContext) (Agent, []directive.Directive, error)
	// Cmd executes instructions, producing the updated agent, any external
	// directives they emitted, and the per-instruction action.Result values
	// in execution order (one entry per instruction actually run; a
	// skipped/failed instruction contributes no entry).
	Cmd(ctx context.Context, a Agent, instructions []instruction.Instruction, sctx StrategyContext) (Agent, []directive.Directive, []action.Result, error)
}
