package action

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncAdaptsPlainFunctionToAction(t *testing.T) {
	t.Parallel()

	f := Func{Name: "demo.echo", Fn: func(ctx context.Context, params, execContext map[string]any) (Result, error) {
		return Result{Result: map[string]any{"echo": params["value"]}}, nil
	}}

	assert.Equal(t, ID("demo.echo"), f.ID())
	res, err := f.Run(context.Background(), map[string]any{"value": 42}, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, res.Result["echo"])
}

func TestStaticRegistryLookup(t *testing.T) {
	t.Parallel()

	known := Func{Name: "known", Fn: func(ctx context.Context, params, execContext map[string]any) (Result, error) {
		return Result{}, nil
	}}
	reg := NewStaticRegistry(known)

	impl, ok := reg.Lookup("known")
	require.True(t, ok)
	assert.Equal(t, ID("known"), impl.ID())

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)
}

func TestStaticRegistryRegisterReplaces(t *testing.T) {
	t.Parallel()

	reg := NewStaticRegistry()
	reg.Register(Func{Name: "a", Fn: func(ctx context.Context, p, e map[string]any) (Result, error) { return Result{Result: map[string]any{"v": 1}}, nil }})
	reg.Register(Func{Name: "a", Fn: func(ctx context.Context, p, e map[string]any) (Result, error) { return Result{Result: map[string]any{"v": 2}}, nil }})

	impl, ok := reg.Lookup("a")
	require.True(t, ok)
	res, err := impl.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Result["v"])
}

func TestSetAddIsIdempotentAndPreservesOrder(t *testing.T) {
	t.Parallel()

	s := NewSet("a", "b", "a")
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []ID{"a", "b"}, s.List())

	s.Add("a")
	assert.Equal(t, 2, s.Len())

	s.Add("c")
	assert.Equal(t, []ID{"a", "b", "c"}, s.List())
}

func TestSetRemoveIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewSet("a", "b")
	s.Remove("a")
	assert.False(t, s.Has("a"))
	assert.Equal(t, 1, s.Len())

	s.Remove("a")
	assert.Equal(t, 1, s.Len())
}
