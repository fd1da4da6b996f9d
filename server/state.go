// Package server implements the Agent Server: the per-agent run loop
// (scheduler), its state machine, the directive executor, and the
// goroutine/channel process wrapper that callers drive via Call/Cast.
package server

import (
	"github.com/basalt-labs/agentrt/agent"
	"github.com/basalt-labs/agentrt/signal"
)

// Status is a node in the server's state machine.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusIdle         Status = "idle"
	StatusPlanning     Status = "planning"
	StatusRunning      Status = "running"
	StatusPaused       Status = "paused"
)

// Mode selects how the scheduler drains its queue.
type Mode string

const (
	// ModeAuto drains the queue until empty, stopping early only on an
	// unrecoverable strategy crash or a Stop directive.
	ModeAuto Mode = "auto"
	// ModeStep processes exactly one queued signal per wakeup (a Call, a
	// Cast, or a signal posted by a Schedule/Cron timer), then returns to
	// idle.
	ModeStep Mode = "step"
	// ModeDebug behaves like ModeStep but also emits
	// debugger.pre.signal/debugger.post.signal around the single signal
	// processed, and records a DebugBreak for it inside the server. That
	// DebugBreak is not exposed through Handle or the State snapshot.
	ModeDebug Mode = "debug"
)

// transitions enumerates every legal (from, to) pair in the state table;
// an attempted move absent from this set is an illegal transition and
// emits transition.failed instead of mutating status.
var transitions = map[Status]map[Status]bool{
	StatusInitializing: {StatusIdle: true},
	StatusIdle:         {StatusRunning: true, StatusPlanning: true},
	StatusPlanning:     {StatusRunning: true},
	StatusRunning:      {StatusIdle: true, StatusPaused: true},
	StatusPaused:       {StatusRunning: true},
}

func isValidTransition(from, to Status) bool {
	return transitions[from][to]
}

// State is a read-only snapshot of a running Agent Server, returned by
// Handle.State().
type State struct {
	ID            string
	Status        Status
	Mode          Mode
	Agent         agent.Agent
	QueueLen      int
	MaxQueueSize  int
	CorrelationID string
	CausationID   string
}

// CallResult is what a synchronous Call delivers on completion.
type CallResult struct {
	Data any
	Err  error
}

// DebugBreak is recorded by each debug-mode wakeup: the signal that was
// processed plus the agent value immediately afterward.
type DebugBreak struct {
	Signal signal.Signal
	Agent  agent.Agent
}
