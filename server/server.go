package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/basalt-labs/agentrt/action"
	"github.com/basalt-labs/agentrt/agent"
	"github.com/basalt-labs/agentrt/agenterrors"
	"github.com/basalt-labs/agentrt/dispatch"
	"github.com/basalt-labs/agentrt/queue"
	"github.com/basalt-labs/agentrt/router"
	"github.com/basalt-labs/agentrt/signal"
	"github.com/basalt-labs/agentrt/storage"
	"github.com/basalt-labs/agentrt/supervisor"
	"github.com/basalt-labs/agentrt/telemetry"
)

func errInvalidAgent() error {
	return agenterrors.NewInvalidAgentError("agent server started with a nil agent")
}

type requestKind int

const (
	reqCast requestKind = iota
	reqCall
	reqState
	reqAttach
	reqDetach
	reqTouch
	reqStop
	reqClear
	reqInternalCast // used by timers (Schedule) and self-cascaded Enqueue
	reqCronFire     // posted by a Cron timer; re-arming happens run-loop-side
)

type request struct {
	kind   requestKind
	signal signal.Signal
	front  bool // true for reqInternalCast entries that must jump the queue

	cronJobID    string        // set on reqCronFire
	cronInterval time.Duration // set on reqCronFire

	callReply  chan CallResult
	castReply  chan string
	stateReply chan State
	errReply   chan error
}

// Handle is an opaque reference to a running Agent Server goroutine — the
// Go analogue of an agent "pid".
type Handle struct {
	requests chan request
	done     chan struct{}
	stopOnce sync.Once
}

// server is the single-goroutine-owned mutable runtime state. Every field
// here is touched exclusively by the run loop goroutine.
type server struct {
	id string

	agent    agent.Agent
	queue    *queue.Queue
	router   *router.Router
	registry action.Registry
	dispatch *dispatch.List
	storage  storage.Store
	children *supervisor.Pool
	childReg supervisor.ChildRegistry

	logger  telemetry.Logger
	metrics telemetry.Metrics
	tracer  telemetry.Tracer

	mode   Mode
	status Status

	currentCorrelationID string
	currentCausationID   string

	replyRefs map[string]chan CallResult
	schedules map[string]*time.Timer

	attachCount int
	idleTimeout time.Duration
	idleTimer   *time.Timer

	lastDebugBreak *DebugBreak

	stopRequested bool
	stopReason    string

	requests chan request
	done     chan struct{}
}

// Start instantiates and runs an Agent Server, returning a Handle. Mount
// runs synchronously before Start returns; a Mount failure is returned as
// a mount_failed error and no goroutine is left running.
func Start(ctx context.Context, opts Options) (*Handle, error) {
	a, err := opts.resolveAgent()
	if err != nil {
		return nil, err
	}

	bp := a.Blueprint
	if bp != nil && bp.Mount != nil {
		mounted, mountErr := bp.Mount(a)
		if mountErr != nil {
			return nil, agenterrors.NewMountFailedError(mountErr)
		}
		a = mounted
	}

	for _, id := range opts.Actions {
		a.Actions.Add(id)
	}

	maxQueueSize := opts.MaxQueueSize
	if maxQueueSize == 0 {
		maxQueueSize = defaultMaxQueueSize
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeAuto
	}
	logger := opts.Logger
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = telemetry.NewNoopTracer()
	}
	disp := opts.Dispatch
	if disp == nil {
		disp = dispatch.NewList(logger)
	}

	maxChildren := opts.MaxChildren
	if maxChildren == 0 {
		maxChildren = defaultMaxChildren
	}
	children, err := supervisor.New(a.ID, maxChildren, logger)
	if err != nil {
		return nil, fmt.Errorf("start child supervision pool: %w", err)
	}

	s := &server{
		id:          a.ID,
		agent:       a,
		queue:       queue.New(maxQueueSize),
		router:      router.New(opts.Routes...),
		registry:    opts.Registry,
		dispatch:    disp,
		storage:     opts.Storage,
		children:    children,
		childReg:    opts.ChildRegistry,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		mode:        mode,
		status:      StatusInitializing,
		replyRefs:   make(map[string]chan CallResult),
		schedules:   make(map[string]*time.Timer),
		idleTimeout: opts.IdleTimeout,
		requests:    make(chan request, 64),
		done:        make(chan struct{}),
	}

	s.transition(StatusIdle)
	s.resetIdleTimer()

	go s.run()

	return &Handle{requests: s.requests, done: s.done}, nil
}

func (s *server) run() {
	defer close(s.done)
	defer s.children.Close()
	for {
		var idleC <-chan time.Time
		if s.idleTimer != nil {
			idleC = s.idleTimer.C
		}
		select {
		case req, ok := <-s.requests:
			if !ok {
				return
			}
			if s.handleRequest(req) {
				s.shutdown()
				return
			}
		case <-idleC:
			if s.attachCount > 0 {
				s.resetIdleTimer()
				continue
			}
			s.shutdown()
			return
		}
	}
}

// hibernate persists the agent's state via storage (if configured) so
// the Instance Manager's next Get can thaw it, matching the idle-timeout
// behavior described in spec 4.7/4.8.
func (s *server) hibernate() {
	if s.storage == nil {
		return
	}
	if err := s.storage.Save(context.Background(), s.agent.Kind(), s.id, s.agent.State); err != nil {
		s.logger.Warn(context.Background(), "hibernate checkpoint failed", "agent_id", s.id, "err", err)
		return
	}
	s.logger.Info(context.Background(), "agent hibernated", "agent_id", s.id)
}

func (s *server) handleRequest(req request) (stop bool) {
	switch req.kind {
	case reqCast:
		s.touch()
		s.enqueueBack(req.signal)
		if req.castReply != nil {
			req.castReply <- req.signal.ID
		}
		s.attemptProcess()
		return s.stopRequested
	case reqInternalCast:
		s.touch()
		if req.front {
			s.enqueueFront(req.signal)
		} else {
			s.enqueueBack(req.signal)
		}
		s.attemptProcess()
		return s.stopRequested
	case reqCronFire:
		s.touch()
		s.enqueueFront(req.signal)
		s.attemptProcess()
		if !s.stopRequested {
			s.armCron(req.cronJobID, req.cronInterval, req.signal)
		}
		return s.stopRequested
	case reqCall:
		s.touch()
		if req.callReply != nil {
			s.replyRefs[req.signal.ID] = req.callReply
		}
		s.enqueueBack(req.signal)
		s.attemptProcess()
		return s.stopRequested
	case reqState:
		req.stateReply <- s.snapshot()
	case reqAttach:
		s.attachCount++
		s.resetIdleTimer()
		if req.errReply != nil {
			req.errReply <- nil
		}
	case reqDetach:
		if s.attachCount > 0 {
			s.attachCount--
		}
		s.resetIdleTimer()
		if req.errReply != nil {
			req.errReply <- nil
		}
	case reqTouch:
		s.resetIdleTimer()
		if req.errReply != nil {
			req.errReply <- nil
		}
	case reqClear:
		s.clearQueue()
		if req.errReply != nil {
			req.errReply <- nil
		}
	case reqStop:
		if req.errReply != nil {
			req.errReply <- nil
		}
		return true
	}
	return false
}

func (s *server) snapshot() State {
	return State{
		ID:            s.id,
		Status:        s.status,
		Mode:          s.mode,
		Agent:         s.agent,
		QueueLen:      s.queue.Len(),
		MaxQueueSize:  s.queue.MaxSize(),
		CorrelationID: s.currentCorrelationID,
		CausationID:   s.currentCausationID,
	}
}

func (s *server) shutdown() {
	if s.stopRequested {
		s.logger.Info(context.Background(), "agent server stopping", "agent_id", s.id, "reason", s.stopReason)
	}
	s.hibernate()
	for _, t := range s.schedules {
		t.Stop()
	}
	bp := s.agent.Blueprint
	if bp != nil && bp.Shutdown != nil {
		if err := bp.Shutdown(s.agent); err != nil {
			s.logger.Warn(context.Background(), "shutdown hook failed", "agent_id", s.id, "err", err)
		}
	}
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
}

func (s *server) touch() { s.resetIdleTimer() }

func (s *server) resetIdleTimer() {
	if s.idleTimeout <= 0 {
		return
	}
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleTimer = time.NewTimer(s.idleTimeout)
}

func (s *server) enqueueBack(sig signal.Signal) {
	if !s.queue.Enqueue(sig) {
		s.emitOverflow(sig)
	}
}

func (s *server) enqueueFront(sig signal.Signal) {
	if !s.queue.EnqueueFront(sig) {
		s.emitOverflow(sig)
	}
}

// clearQueue empties the pending-signal queue and emits queue.cleared
// with the size it held beforehand, per spec 4.4.
func (s *server) clearQueue() {
	prior := s.queue.Clear()
	s.emit(signal.New(signal.TypeQueueCleared, signal.QueueClearedData{QueueSize: prior}, signal.WithSource(s.id)))
}

func (s *server) emitOverflow(sig signal.Signal) {
	s.dispatch.Dispatch(context.Background(), signal.New(
		signal.TypeQueueOverflow,
		signal.QueueOverflowData{QueueSize: s.queue.Len(), MaxSize: s.queue.MaxSize(), Dropped: sig},
		signal.WithSource(s.id),
		signal.WithCorrelationID(s.currentCorrelationID),
	))
	s.metrics.IncCounter("agentrt.queue.overflow", 1, "agent_id", s.id)
	if ref, ok := s.replyRefs[sig.ID]; ok {
		ref <- CallResult{Err: agenterrors.NewQueueOverflowError(map[string]any{
			"queue_size": s.queue.Len(), "max_size": s.queue.MaxSize(),
		})}
		delete(s.replyRefs, sig.ID)
	}
}

// --- Handle: the public, concurrency-safe API ---------------------------

// Call enqueues s and blocks until the matching signal_result arrives or
// timeout elapses. A zero timeout waits indefinitely.
func (h *Handle) Call(ctx context.Context, s signal.Signal, timeout time.Duration) (any, error) {
	reply := make(chan CallResult, 1)
	req := request{kind: reqCall, signal: s, callReply: reply}
	select {
	case h.requests <- req:
	case <-h.done:
		return nil, agenterrors.NewNotFoundError("agent server is no longer running", nil)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var timeoutC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}
	select {
	case res := <-reply:
		return res.Data, res.Err
	case <-timeoutC:
		return nil, fmt.Errorf("call timed out after %s", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return nil, agenterrors.NewNotFoundError("agent server terminated before replying", nil)
	}
}

// Cast enqueues s without waiting, returning s.ID as the correlation handle.
func (h *Handle) Cast(ctx context.Context, s signal.Signal) (string, error) {
	reply := make(chan string, 1)
	req := request{kind: reqCast, signal: s, castReply: reply}
	select {
	case h.requests <- req:
	case <-h.done:
		return "", agenterrors.NewNotFoundError("agent server is no longer running", nil)
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case id := <-reply:
		return id, nil
	case <-h.done:
		return s.ID, nil
	}
}

// State returns a snapshot of the running server.
func (h *Handle) State(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	select {
	case h.requests <- request{kind: reqState, stateReply: reply}:
	case <-h.done:
		return State{}, agenterrors.NewNotFoundError("agent server is no longer running", nil)
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
	select {
	case st := <-reply:
		return st, nil
	case <-h.done:
		return State{}, agenterrors.NewNotFoundError("agent server terminated", nil)
	}
}

func (h *Handle) control(kind requestKind) error {
	reply := make(chan error, 1)
	select {
	case h.requests <- request{kind: kind, errReply: reply}:
	case <-h.done:
		return nil
	}
	select {
	case err := <-reply:
		return err
	case <-h.done:
		return nil
	}
}

// Attach registers an activity token, resetting the idle timer and
// preventing idle-driven hibernation while any token is held.
func (h *Handle) Attach() error { return h.control(reqAttach) }

// Detach releases an activity token.
func (h *Handle) Detach() error { return h.control(reqDetach) }

// Touch resets the idle timer without changing the attach count.
func (h *Handle) Touch() error { return h.control(reqTouch) }

// Clear empties the pending-signal queue, emitting queue.cleared with
// the size it held beforehand.
func (h *Handle) Clear() error { return h.control(reqClear) }

// Stop requests graceful shutdown and waits for the run loop to exit.
func (h *Handle) Stop() error {
	h.stopOnce.Do(func() {
		select {
		case h.requests <- request{kind: reqStop}:
		case <-h.done:
		}
	})
	<-h.done
	return nil
}

// Done is closed once the server's run loop has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }
