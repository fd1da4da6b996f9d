package server

import (
	"context"
	"fmt"
	"time"

	"github.com/basalt-labs/agentrt/action"
	"github.com/basalt-labs/agentrt/agent"
	"github.com/basalt-labs/agentrt/agenterrors"
	"github.com/basalt-labs/agentrt/directive"
	"github.com/basalt-labs/agentrt/instruction"
	"github.com/basalt-labs/agentrt/signal"
)

// transition moves the server to to, emitting transition.succeeded on a
// legal move or transition.failed (without changing status) on an
// illegal one.
func (s *server) transition(to Status) error {
	from := s.status
	if !isValidTransition(from, to) {
		s.emit(signal.New(signal.TypeTransitionFailed,
			signal.TransitionData{From: string(from), To: string(to)},
			signal.WithSource(s.id)))
		return agenterrors.NewInvalidTransitionError(string(from), string(to))
	}
	s.status = to
	s.emit(signal.New(signal.TypeTransitionSucceeded,
		signal.TransitionData{From: string(from), To: string(to)},
		signal.WithSource(s.id)))
	return nil
}

func (s *server) emit(sig signal.Signal) {
	if sig.CorrelationID == "" {
		sig.CorrelationID = s.currentCorrelationID
	}
	s.dispatch.Dispatch(context.Background(), sig)
}

// attemptProcess drives the queue according to s.mode. auto drains until
// empty, a strategy crash, or a Stop directive; step/debug each process at
// most one signal per wakeup.
func (s *server) attemptProcess() {
	switch s.mode {
	case ModeAuto:
		for s.queue.Len() > 0 {
			if !s.processOne() || s.stopRequested {
				return
			}
		}
	case ModeStep:
		if s.queue.Len() > 0 {
			s.processOne()
		}
	case ModeDebug:
		if s.queue.Len() > 0 {
			s.processDebug()
		}
	}
}

// processOne pops and fully processes one signal, returning false if
// auto-mode draining should stop (an unrecoverable strategy crash).
func (s *server) processOne() bool {
	sig, ok := s.queue.Dequeue()
	if !ok {
		return true
	}
	s.transition(StatusRunning)
	s.stampCorrelation(sig)

	instructions, routeErr := s.resolveInstructions(sig)
	if routeErr != nil {
		s.handleRouteError(sig, routeErr)
		s.transition(StatusIdle)
		return true // Open Question 1: auto mode advances past an unroutable signal.
	}

	nextAgent, dirs, results, crashed := s.invokeStrategy(sig, instructions)
	if crashed {
		s.transition(StatusIdle)
		return false
	}
	s.agent = nextAgent

	for _, d := range dirs {
		if err := s.applyDirective(sig, d); err != nil {
			s.logger.Warn(context.Background(), "directive application failed",
				"agent_id", s.id, "signal_id", sig.ID, "err", err)
			s.emitError(sig, err)
			break // "first error halts the batch and returns" (spec 4.6)
		}
	}

	s.emitResults(sig, results)
	s.deliverReply(sig, nextAgent)
	s.transition(StatusIdle)
	return true
}

func (s *server) processDebug() {
	queued := s.queue.Peek()
	if len(queued) == 0 {
		return
	}
	head := queued[0]
	s.emit(signal.New(signal.TypeDebuggerPreSignal, signal.DebuggerSignalData{SignalID: head.ID}, signal.WithSource(s.id)))
	s.processOne()
	s.lastDebugBreak = &DebugBreak{Signal: head, Agent: s.agent}
	s.emit(signal.New(signal.TypeDebuggerPostSignal, signal.DebuggerSignalData{SignalID: head.ID}, signal.WithSource(s.id)))
}

func (s *server) stampCorrelation(sig signal.Signal) {
	if sig.CorrelationID != "" {
		s.currentCorrelationID = sig.CorrelationID
	}
	if sig.CausationID != "" {
		s.currentCausationID = sig.CausationID
	}
}

// resolveInstructions routes sig to instructions via the configured
// Router, except for the synthetic signals Enqueue directives produce:
// those already carry a fully-formed Instruction and bypass routing
// entirely (Open Question 3).
func (s *server) resolveInstructions(sig signal.Signal) ([]instruction.Instruction, error) {
	if sig.Type == enqueueSignalType {
		if instr, ok := sig.Data.(instruction.Instruction); ok {
			return []instruction.Instruction{instr}, nil
		}
		return nil, agenterrors.NewExecutionError("Invalid instruction format", sig.Data)
	}
	return s.router.Route(sig)
}

func (s *server) handleRouteError(sig signal.Signal, routeErr error) {
	s.emitError(sig, routeErr)
	if ref, ok := s.replyRefs[sig.ID]; ok {
		ref <- CallResult{Err: routeErr}
		delete(s.replyRefs, sig.ID)
	}
}

func (s *server) emitError(sig signal.Signal, err error) {
	s.emit(signal.New(signal.TypeError, signal.ErrorData{
		Message: err.Error(), AgentID: s.id, Timestamp: time.Now().Unix(),
	}, signal.WithSource(s.id)).CausedBy(sig))
	s.metrics.IncCounter("agentrt.errors", 1, "agent_id", s.id)
}

// invokeStrategy runs the routed instructions through the agent's
// strategy, recovering a panic as a "strategy crash" per the Failure
// semantics table: the server preserves the last valid agent value and
// emits execution_error instead of propagating the panic.
func (s *server) invokeStrategy(sig signal.Signal, instructions []instruction.Instruction) (next agent.Agent, dirs []directive.Directive, results []action.Result, crashed bool) {
	defer func() {
		if r := recover(); r != nil {
			crashed = true
			next = s.agent
			results = nil
			err := fmt.Errorf("strategy crashed: %v", r)
			s.logger.Error(context.Background(), "strategy crashed", "agent_id", s.id, "signal_id", sig.ID, "panic", r)
			s.emitError(sig, err)
		}
	}()
	sctx := agent.StrategyContext{Registry: s.registry, Extra: map[string]any{"agent_id": s.id}}
	next, dirs, results = agent.CmdInstructions(context.Background(), s.agent, instructions, sctx)
	return next, dirs, results, false
}

// emitResults emits one instruction_result per executed instruction,
// carrying that instruction's own result map, followed by a single
// signal_result carrying the last instruction's result (or an empty map
// if none ran) — per the per-signal algorithm's step 8. Both are caused
// by sig and carry its correlation id.
func (s *server) emitResults(sig signal.Signal, results []action.Result) {
	for _, r := range results {
		s.emit(signal.New(signal.TypeInstructionResult, resultDataOf(r), signal.WithSource(s.id)).CausedBy(sig))
	}
	final := map[string]any{}
	if len(results) > 0 {
		final = resultDataOf(results[len(results)-1])
	}
	s.emit(signal.New(signal.TypeSignalResult, final, signal.WithSource(s.id)).CausedBy(sig))
}

func resultDataOf(r action.Result) map[string]any {
	if r.Result == nil {
		return map[string]any{}
	}
	return r.Result
}

func (s *server) deliverReply(sig signal.Signal, a agent.Agent) {
	ref, ok := s.replyRefs[sig.ID]
	if !ok {
		return
	}
	delete(s.replyRefs, sig.ID)
	ref <- CallResult{Data: map[string]any{"state": a.State}}
}
