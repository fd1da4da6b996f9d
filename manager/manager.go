// Package manager implements the Instance Manager: a keyed registry of
// running Agent Servers, starting one on first Get, thawing it from
// storage if a prior instance hibernated, and hibernating it again on
// Stop or idle timeout.
package manager

import (
	"context"
	"sync"

	"github.com/basalt-labs/agentrt/agent"
	"github.com/basalt-labs/agentrt/agenterrors"
	"github.com/basalt-labs/agentrt/server"
)

// Blueprint bundles the agent blueprint and default server options a
// Manager uses to start or thaw an instance for a key.
type Blueprint struct {
	Agent   *agent.Blueprint
	Options server.Options
}

// GetOpts overrides defaults for a single Get call.
type GetOpts struct {
	InitialState map[string]any
}

// Stats summarizes a Manager's currently tracked instances.
type Stats struct {
	Count int
	Keys  []string
}

// Manager owns an isolated map of key -> running server.Handle. Distinct
// Manager values share no state, matching the independence requirement:
// each is a plain map guarded by its own mutex (the teacher's
// Runtime.agents/toolsets registry idiom) rather than sync.Map.
type Manager struct {
	mu        sync.RWMutex
	instances map[string]*server.Handle
	blueprint Blueprint
}

// New builds a Manager that starts instances from blueprint.
func New(blueprint Blueprint) *Manager {
	return &Manager{instances: make(map[string]*server.Handle), blueprint: blueprint}
}

// Get returns the running handle for key, starting (or thawing) one if
// none is currently live.
func (m *Manager) Get(ctx context.Context, key string, opts GetOpts) (*server.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.instances[key]; ok {
		select {
		case <-h.Done():
			delete(m.instances, key)
		default:
			return h, nil
		}
	}

	initialState := opts.InitialState
	storage := m.blueprint.Options.Storage
	if storage != nil {
		blueprintKind := ""
		if m.blueprint.Agent != nil {
			blueprintKind = m.blueprint.Agent.Kind
		}
		if thawed, ok, err := storage.Load(ctx, blueprintKind, key); err == nil && ok {
			merged := make(map[string]any, len(thawed)+len(initialState))
			for k, v := range thawed {
				merged[k] = v
			}
			for k, v := range initialState {
				merged[k] = v
			}
			initialState = merged
		}
	}

	startOpts := m.blueprint.Options
	startOpts.Agent = m.blueprint.Agent
	startOpts.ID = key
	startOpts.InitialState = initialState

	h, err := server.Start(ctx, startOpts)
	if err != nil {
		return nil, err
	}
	m.instances[key] = h
	return h, nil
}

// Lookup returns the handle for key without starting one.
func (m *Manager) Lookup(key string) (*server.Handle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.instances[key]
	if !ok {
		return nil, agenterrors.NewNotFoundError("no running agent for key", key)
	}
	return h, nil
}

// Stop terminates the instance registered under key, hibernating it
// first if storage is configured (Handle.Stop already runs each
// Blueprint's Shutdown hook; persistence itself happens inside the
// server's idle/stop path when Options.Storage is set).
func (m *Manager) Stop(key string) error {
	m.mu.Lock()
	h, ok := m.instances[key]
	if ok {
		delete(m.instances, key)
	}
	m.mu.Unlock()
	if !ok {
		return agenterrors.NewNotFoundError("no running agent for key", key)
	}
	return h.Stop()
}

// Stats reports the current instance count and keys.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.instances))
	for k, h := range m.instances {
		select {
		case <-h.Done():
			continue
		default:
			keys = append(keys, k)
		}
	}
	return Stats{Count: len(keys), Keys: keys}
}
