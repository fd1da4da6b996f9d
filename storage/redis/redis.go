// Package redis implements storage.Store on top of Redis, keyed by
// "agentrt:checkpoint:<blueprintKind>:<key>", grounded in the teacher's
// Redis-backed registry/result-stream patterns (JSON-encoded payloads,
// *redis.Client, context-scoped calls).
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/basalt-labs/agentrt/storage"
)

func ttlDuration(seconds int64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using a single Redis key per checkpoint.
type Store struct {
	Client *redis.Client
	// TTL, if non-zero, is applied to every saved checkpoint.
	TTL int64 // seconds; 0 means no expiry
}

// New builds a Store over client.
func New(client *redis.Client) *Store {
	return &Store{Client: client}
}

func key(blueprintKind, k string) string {
	return fmt.Sprintf("agentrt:checkpoint:%s:%s", blueprintKind, k)
}

// Save implements storage.Store.
func (s *Store) Save(ctx context.Context, blueprintKind, k string, state map[string]any) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	cmd := s.Client.Set(ctx, key(blueprintKind, k), payload, ttlDuration(s.TTL))
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Load implements storage.Store.
func (s *Store) Load(ctx context.Context, blueprintKind, k string) (map[string]any, bool, error) {
	raw, err := s.Client.Get(ctx, key(blueprintKind, k)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load checkpoint: %w", err)
	}
	var state map[string]any
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, false, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return state, true, nil
}

// Delete implements storage.Store.
func (s *Store) Delete(ctx context.Context, blueprintKind, k string) error {
	if err := s.Client.Del(ctx, key(blueprintKind, k)).Err(); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}
