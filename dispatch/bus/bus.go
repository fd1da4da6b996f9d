// Package bus implements the "bus" dispatch adapter, publishing signals
// to a named Redis Pub/Sub stream so they can be consumed by collaborators
// outside the agent server's process.
package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/basalt-labs/agentrt/signal"
)

// wireSignal is the JSON shape published on the bus; it mirrors
// signal.Signal but flattens the optional Dispatch override out, since a
// signal already in flight on the bus has no further dispatch to apply.
type wireSignal struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Source        string `json:"source,omitempty"`
	Data          any    `json:"data,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	CausationID   string `json:"causation_id,omitempty"`
}

// Adapter publishes signals on a Redis channel named by Stream, or — when
// opts carries a "stream" key at Dispatch time — that override instead.
type Adapter struct {
	Client *redis.Client
	Stream string
}

// Kind implements dispatch.Adapter.
func (Adapter) Kind() string { return "bus" }

// Dispatch implements dispatch.Adapter.
func (a Adapter) Dispatch(ctx context.Context, s signal.Signal) error {
	stream := a.Stream
	if s.Dispatch != nil {
		if override, ok := s.Dispatch.Opts["stream"].(string); ok && override != "" {
			stream = override
		}
	}
	if stream == "" {
		return fmt.Errorf("bus adapter: no stream configured")
	}
	payload, err := json.Marshal(wireSignal{
		ID:            s.ID,
		Type:          s.Type,
		Source:        s.Source,
		Data:          s.Data,
		CorrelationID: s.CorrelationID,
		CausationID:   s.CausationID,
	})
	if err != nil {
		return fmt.Errorf("marshal signal for bus: %w", err)
	}
	if err := a.Client.Publish(ctx, stream, payload).Err(); err != nil {
		return fmt.Errorf("publish to stream %q: %w", stream, err)
	}
	return nil
}

// Subscribe returns a Redis PubSub subscription to stream, decoding
// messages back into signal.Signal for consumers outside the owning
// agent server.
func Subscribe(ctx context.Context, client *redis.Client, stream string) (<-chan signal.Signal, func() error) {
	sub := client.Subscribe(ctx, stream)
	out := make(chan signal.Signal)
	go func() {
		defer close(out)
		ch := sub.Channel()
		for msg := range ch {
			var wire wireSignal
			if err := json.Unmarshal([]byte(msg.Payload), &wire); err != nil {
				continue
			}
			out <- signal.Signal{
				ID:            wire.ID,
				Type:          wire.Type,
				Source:        wire.Source,
				Data:          wire.Data,
				CorrelationID: wire.CorrelationID,
				CausationID:   wire.CausationID,
			}
		}
	}()
	return out, sub.Close
}
