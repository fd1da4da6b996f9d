package server

import (
	"time"

	"github.com/basalt-labs/agentrt/action"
	"github.com/basalt-labs/agentrt/agent"
	"github.com/basalt-labs/agentrt/dispatch"
	"github.com/basalt-labs/agentrt/router"
	"github.com/basalt-labs/agentrt/storage"
	"github.com/basalt-labs/agentrt/supervisor"
	"github.com/basalt-labs/agentrt/telemetry"
)

// defaultMaxQueueSize is the configuration option's documented default.
const defaultMaxQueueSize = 10_000

// defaultMaxChildren bounds the per-server child supervision pool when
// Options.MaxChildren is left at zero.
const defaultMaxChildren = 32

// Options configures Start. Agent is required: either a pre-built
// agent.Agent value, or a *agent.Blueprint to instantiate via agent.New
// with ID/InitialState applied (an existing Agent value's own ID always
// wins over Options.ID).
type Options struct {
	Agent        any // agent.Agent or *agent.Blueprint
	ID           string
	InitialState map[string]any
	Mode         Mode
	Dispatch     *dispatch.List
	Routes       []router.Rule
	Actions      []action.ID
	Registry     action.Registry
	MaxQueueSize  int
	MaxChildren   int
	ChildRegistry supervisor.ChildRegistry
	IdleTimeout   time.Duration
	Storage       storage.Store
	Logger       telemetry.Logger
	Metrics      telemetry.Metrics
	Tracer       telemetry.Tracer
}

func (o Options) resolveAgent() (agent.Agent, error) {
	switch v := o.Agent.(type) {
	case agent.Agent:
		return v, nil
	case *agent.Blueprint:
		return agent.New(v, agent.Options{ID: o.ID, InitialState: o.InitialState, Actions: o.Actions}), nil
	default:
		return agent.Agent{}, errInvalidAgent()
	}
}
