// Package storage defines the hibernate/thaw checkpoint contract used by
// the Instance Manager: dump an agent's durable projection before
// terminating an idle server, and load it back on the next Get.
package storage

import "context"

// Store persists and retrieves a checkpoint keyed by (blueprintKind, key).
// Implementations must be safe for concurrent use across many agent
// servers sharing one Store.
type Store interface {
	// Save writes state for the given blueprint kind and instance key.
	Save(ctx context.Context, blueprintKind, key string, state map[string]any) error
	// Load reads state for the given blueprint kind and instance key.
	// Returns ok=false (not an error) if no checkpoint exists.
	Load(ctx context.Context, blueprintKind, key string) (state map[string]any, ok bool, err error)
	// Delete removes a checkpoint, e.g. after a clean (non-hibernating) stop.
	Delete(ctx context.Context, blueprintKind, key string) error
}
