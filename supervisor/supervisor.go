// Package supervisor backs the Directive Executor's Spawn/Kill directives
// with a bounded goroutine pool instead of hand-rolled goroutine
// bookkeeping, grounded in the example corpus's own ants.Pool wrapper
// (capacity limits, panic recovery, a name per pool).
package supervisor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/basalt-labs/agentrt/agenterrors"
	"github.com/basalt-labs/agentrt/telemetry"
)

// Task is the long-lived body of a spawned child. It must return when ctx
// is cancelled; Kill cancels ctx and does not otherwise interrupt Task.
type Task func(ctx context.Context)

// ChildFunc is the body registered under a module name, invoked with the
// Spawn directive's Args when that module is resolved.
type ChildFunc func(ctx context.Context, args map[string]any)

// ChildRegistry resolves a Spawn directive's Module to a ChildFunc,
// mirroring action.Registry's Lookup shape.
type ChildRegistry interface {
	Lookup(module string) (ChildFunc, bool)
}

// StaticChildRegistry is the simplest ChildRegistry: an injected map.
type StaticChildRegistry struct {
	funcs map[string]ChildFunc
}

// NewStaticChildRegistry builds a StaticChildRegistry from name->func pairs.
func NewStaticChildRegistry(funcs map[string]ChildFunc) *StaticChildRegistry {
	return &StaticChildRegistry{funcs: funcs}
}

// Lookup implements ChildRegistry.
func (r *StaticChildRegistry) Lookup(module string) (ChildFunc, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.funcs[module]
	return f, ok
}

// Pool supervises the children of a single agent server: each Spawn
// submits Task to a dedicated ants.Pool and tracks a cancellation func
// under a generated pid; Kill invokes it and releases the pool slot.
type Pool struct {
	name   string
	logger telemetry.Logger
	ants   *ants.Pool

	mu       sync.Mutex
	children map[string]context.CancelFunc
	closed   bool
}

// New builds a Pool named name (typically the owning agent's id) with
// room for maxChildren concurrent children. maxChildren <= 0 defaults to
// 32, matching the runtime's per-agent child budget.
func New(name string, maxChildren int, logger telemetry.Logger) (*Pool, error) {
	if maxChildren <= 0 {
		maxChildren = 32
	}
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	p := &Pool{name: name, logger: logger, children: make(map[string]context.CancelFunc)}
	antsPool, err := ants.NewPool(maxChildren, ants.WithPanicHandler(p.recoverPanic), ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("supervisor: new pool %q: %w", name, err)
	}
	p.ants = antsPool
	return p, nil
}

func (p *Pool) recoverPanic(r any) {
	p.logger.Error(context.Background(), "child task panicked",
		"pool", p.name, "panic", fmt.Sprintf("%v", r), "stack", string(debug.Stack()))
}

// Spawn submits task to the pool under a freshly generated pid, returning
// that pid for later Kill. It fails with agenterrors.ErrExecution if the
// pool is closed or at capacity.
func (p *Pool) Spawn(task Task) (pid string, err error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return "", agenterrors.NewExecutionError("supervisor pool closed", p.name)
	}
	pid = uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	p.children[pid] = cancel
	p.mu.Unlock()

	submitErr := p.ants.Submit(func() {
		defer func() {
			p.mu.Lock()
			delete(p.children, pid)
			p.mu.Unlock()
		}()
		task(ctx)
	})
	if submitErr != nil {
		p.mu.Lock()
		delete(p.children, pid)
		p.mu.Unlock()
		cancel()
		return "", agenterrors.NewExecutionError("failed to spawn child", submitErr.Error())
	}
	return pid, nil
}

// Has reports whether pid is currently tracked (spawned and not yet
// finished or killed).
func (p *Pool) Has(pid string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.children[pid]
	return ok
}

// Kill cancels the child identified by pid and releases its tracking
// entry, reporting whether pid was actually tracked.
func (p *Pool) Kill(pid string) (found bool) {
	p.mu.Lock()
	cancel, ok := p.children[pid]
	if ok {
		delete(p.children, pid)
	}
	p.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Running reports how many children are currently tracked.
func (p *Pool) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.children)
}

// Close cancels every outstanding child and releases the underlying ants
// pool. Further Spawn calls fail.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	cancels := make([]context.CancelFunc, 0, len(p.children))
	for pid, cancel := range p.children {
		cancels = append(cancels, cancel)
		delete(p.children, pid)
	}
	p.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
	p.ants.Release()
}
