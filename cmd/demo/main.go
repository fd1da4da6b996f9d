// Command demo wires a single agent server end to end: a Blueprint with
// one action, a router mapping an inbound signal type to it, a logger
// dispatch adapter, and a synchronous Call against the running server.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/basalt-labs/agentrt/action"
	"github.com/basalt-labs/agentrt/agent"
	"github.com/basalt-labs/agentrt/dispatch"
	"github.com/basalt-labs/agentrt/instruction"
	"github.com/basalt-labs/agentrt/router"
	"github.com/basalt-labs/agentrt/server"
	"github.com/basalt-labs/agentrt/signal"
	"github.com/basalt-labs/agentrt/strategy"
	"github.com/basalt-labs/agentrt/telemetry"
)

const greetAction action.ID = "demo.greet"

func greet(ctx context.Context, params, execContext map[string]any) (action.Result, error) {
	name, _ := params["name"].(string)
	if name == "" {
		name = "world"
	}
	return action.Result{Result: map[string]any{
		"greeting": fmt.Sprintf("hello, %s", name),
	}}, nil
}

func main() {
	ctx := context.Background()

	blueprint := &agent.Blueprint{
		Kind:           "demo.greeter",
		Name:           "Greeter",
		Description:    "Replies to greet.requested signals.",
		DefaultActions: []action.ID{greetAction},
		Strategy:       strategy.Direct{},
	}

	registry := action.NewStaticRegistry(action.Func{Name: greetAction, Fn: greet})

	logger := telemetry.NewNoopLogger()
	disp := dispatch.NewList(logger, dispatch.LoggerAdapter{Logger: logger}, dispatch.ConsoleAdapter{
		Write: func(line string) { fmt.Println(line) },
	})

	routes := []router.Rule{
		{
			Pattern: "demo.greet.requested",
			Target: []instruction.Instruction{
				instruction.New(greetAction, nil, nil, instruction.Opts{}),
			},
		},
	}

	handle, err := server.Start(ctx, server.Options{
		Agent:    blueprint,
		ID:       "demo-1",
		Mode:     server.ModeAuto,
		Dispatch: disp,
		Routes:   routes,
		Registry: registry,
		Logger:   logger,
	})
	if err != nil {
		panic(err)
	}
	defer handle.Stop()

	sig := signal.New("demo.greet.requested", map[string]any{"name": "Ada"})
	result, err := handle.Call(ctx, sig, 2*time.Second)
	if err != nil {
		panic(err)
	}
	fmt.Printf("result: %v\n", result)
}
