package server

import (
	"context"
	"fmt"
	"time"

	"github.com/basalt-labs/agentrt/agenterrors"
	"github.com/basalt-labs/agentrt/directive"
	"github.com/basalt-labs/agentrt/instruction"
	"github.com/basalt-labs/agentrt/signal"
	"github.com/basalt-labs/agentrt/statepath"
)

// applyDirective is the Directive Executor: given the server's current
// state and one external directive, it mutates s as needed and returns
// an error that, per spec 4.6, halts the remainder of the directive
// batch for this signal.
func (s *server) applyDirective(sig signal.Signal, d directive.Directive) error {
	switch v := d.(type) {
	case directive.Emit:
		s.emit(v.Signal.CausedBy(sig))
		return nil

	case directive.Schedule:
		s.scheduleOnce("", v.DelayMs, v.Message)
		return nil

	case directive.Cron:
		return s.scheduleCron(v)

	case directive.Spawn:
		return s.spawnChild(v)

	case directive.Kill:
		return s.killChild(v)

	case directive.RegisterAction:
		s.agent.Actions.Add(v.Action)
		return nil

	case directive.DeregisterAction:
		s.agent.Actions.Remove(v.Action)
		return nil

	case directive.Enqueue:
		return s.applyEnqueue(v)

	case directive.StateModification:
		return s.applyStateModification(v)

	case directive.Stop:
		s.stopRequested = true
		s.stopReason = v.Reason
		return nil

	case directive.Error:
		s.emitError(sig, v.Err)
		return nil

	default:
		return agenterrors.NewValidationError("Invalid directive", d)
	}
}

// spawnChild submits the named module's registered function to the
// per-server child supervision pool and emits process.started.
func (s *server) spawnChild(v directive.Spawn) error {
	if s.childReg == nil {
		return agenterrors.NewConfigError("no child registry configured", v.Module)
	}
	fn, ok := s.childReg.Lookup(v.Module)
	if !ok {
		return agenterrors.NewConfigError(fmt.Sprintf("module %s not registered", v.Module), v.Module)
	}
	pid, err := s.children.Spawn(func(ctx context.Context) { fn(ctx, v.Args) })
	if err != nil {
		return err
	}
	s.emit(signal.New(signal.TypeProcessStarted, signal.ProcessStartedData{Pid: pid, Spec: v}, signal.WithSource(s.id)))
	return nil
}

// killChild terminates a supervised child; a pid the pool no longer
// tracks is an execution_error, per spec 4.6's "Process not found".
func (s *server) killChild(v directive.Kill) error {
	if !s.children.Kill(v.Pid) {
		return agenterrors.NewExecutionError("Process not found", v.Pid)
	}
	s.emit(signal.New(signal.TypeProcessTerminated, signal.ProcessTerminatedData{Pid: v.Pid}, signal.WithSource(s.id)))
	return nil
}

// applyEnqueue validates the action, builds an Instruction, and pushes it
// to the front of both the agent's pending-instruction list and the
// server's signal queue, wrapped as a signal the scheduler's normal
// routing-free Enqueue path recognizes (Open Question 3: Enqueue
// directives bypass routing and run the named instruction directly).
func (s *server) applyEnqueue(v directive.Enqueue) error {
	if v.Action == "" {
		return agenterrors.NewValidationError("Invalid action", v.Action)
	}
	params := v.Params
	if params == nil {
		params = map[string]any{}
	}
	ctx := v.Context
	if ctx == nil {
		ctx = map[string]any{}
	}
	instr := instruction.New(v.Action, params, ctx, instruction.Opts{Raw: v.Opts})
	s.agent.PendingInstructions = append([]instruction.Instruction{instr}, s.agent.PendingInstructions...)

	sig := signal.New(enqueueSignalType, instr, signal.WithSource(s.id))
	s.enqueueFront(sig)
	return nil
}

// applyStateModification dispatches on Op per spec 4.6. reset sets only
// the leaf at Path to nil (Open Question 2) rather than clearing a whole
// subtree.
func (s *server) applyStateModification(v directive.StateModification) error {
	switch v.Op {
	case directive.StateModSet:
		merged, err := statepath.SetPath(s.agent.State, v.Path, v.Value)
		if err != nil {
			return agenterrors.NewExecutionError("Failed to modify state", err.Error())
		}
		s.agent.State = merged
	case directive.StateModUpdate:
		if v.UpdateFn == nil {
			return agenterrors.NewValidationError("Invalid state modification operation", v.Op)
		}
		current, _ := statepath.GetPath(s.agent.State, v.Path)
		merged, err := statepath.SetPath(s.agent.State, v.Path, v.UpdateFn(current))
		if err != nil {
			return agenterrors.NewExecutionError("Failed to modify state", err.Error())
		}
		s.agent.State = merged
	case directive.StateModDelete:
		s.agent.State = statepath.DeletePath(s.agent.State, v.Path)
	case directive.StateModReset:
		merged, err := statepath.SetPath(s.agent.State, v.Path, nil)
		if err != nil {
			return agenterrors.NewExecutionError("Failed to modify state", err.Error())
		}
		s.agent.State = merged
	default:
		return agenterrors.NewValidationError("Invalid state modification operation", v.Op)
	}
	s.agent.DirtyState = true
	return nil
}

// scheduleOnce arranges for message to be cast back into this server
// after delayMs, by posting a reqInternalCast request from a separate
// goroutine (timers always fire off-goroutine in Go).
func (s *server) scheduleOnce(jobID string, delayMs int64, message signal.Signal) string {
	if jobID == "" {
		jobID = message.ID
	}
	d := time.Duration(delayMs) * time.Millisecond
	requests := s.requests
	timer := time.AfterFunc(d, func() {
		select {
		case requests <- request{kind: reqInternalCast, signal: message, front: true}:
		case <-s.done:
		}
	})
	s.schedules[jobID] = timer
	return jobID
}

// scheduleCron supports a minimal "@every <duration>" expression,
// repeating indefinitely until the server stops or the job is replaced;
// full crontab syntax has no grounded third-party parser in this
// codebase's dependency set (see DESIGN.md).
func (s *server) scheduleCron(v directive.Cron) error {
	interval, err := parseCronInterval(v.Expression)
	if err != nil {
		return agenterrors.NewValidationError("Invalid cron expression", v.Expression)
	}
	jobID := v.JobID
	if jobID == "" {
		jobID = v.Message.ID
	}
	if existing, ok := s.schedules[jobID]; ok {
		existing.Stop()
	}
	s.armCron(jobID, interval, v.Message)
	return nil
}

// armCron (re-)starts jobID's timer. The timer's callback runs on its own
// goroutine and only ever posts a reqCronFire request onto s.requests; it
// never touches s.schedules itself. Re-arming for the next tick happens
// back on the run-loop goroutine, in handleRequest's reqCronFire case, so
// the schedules map is mutated exclusively by the single owning goroutine
// the rest of the server relies on needing no locks.
func (s *server) armCron(jobID string, interval time.Duration, message signal.Signal) {
	requests := s.requests
	done := s.done
	s.schedules[jobID] = time.AfterFunc(interval, func() {
		select {
		case requests <- request{kind: reqCronFire, signal: message, cronJobID: jobID, cronInterval: interval}:
		case <-done:
		}
	})
}

func parseCronInterval(expr string) (time.Duration, error) {
	const prefix = "@every "
	if len(expr) > len(prefix) && expr[:len(prefix)] == prefix {
		return time.ParseDuration(expr[len(prefix):])
	}
	return time.ParseDuration(expr)
}

// enqueueSignalType tags the synthetic signal used to carry an
// already-built Instruction from an Enqueue directive back through the
// queue without routing it.
const enqueueSignalType = "jido.agent.internal.enqueued_instruction"
