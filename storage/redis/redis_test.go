package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	t.Parallel()

	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "demo.kind", "agent-1", map[string]any{"count": float64(3)}))

	state, ok, err := s.Load(ctx, "demo.kind", "agent-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, float64(3), state["count"])
}

func TestLoadMissingKeyReturnsNotOkWithoutError(t *testing.T) {
	t.Parallel()

	s := setupStore(t)
	_, ok, err := s.Load(context.Background(), "demo.kind", "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteRemovesCheckpoint(t *testing.T) {
	t.Parallel()

	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "demo.kind", "agent-1", map[string]any{"x": 1.0}))
	require.NoError(t, s.Delete(ctx, "demo.kind", "agent-1"))

	_, ok, err := s.Load(ctx, "demo.kind", "agent-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveIsIsolatedByKindAndKey(t *testing.T) {
	t.Parallel()

	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "kind.a", "same-key", map[string]any{"v": "a"}))
	require.NoError(t, s.Save(ctx, "kind.b", "same-key", map[string]any{"v": "b"}))

	stateA, ok, err := s.Load(ctx, "kind.a", "same-key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", stateA["v"])

	stateB, ok, err := s.Load(ctx, "kind.b", "same-key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", stateB["v"])
}
