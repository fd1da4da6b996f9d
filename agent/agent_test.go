package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt-labs/agentrt/action"
	"github.com/basalt-labs/agentrt/agenterrors"
)

func TestNewRegistersDefaultAndExtraActions(t *testing.T) {
	t.Parallel()

	bp := &Blueprint{Kind: "demo", DefaultActions: []action.ID{"a", "b"}}
	a := New(bp, Options{Actions: []action.ID{"b", "c"}})

	assert.True(t, a.Actions.Has("a"))
	assert.True(t, a.Actions.Has("b"))
	assert.True(t, a.Actions.Has("c"))
	assert.Equal(t, 3, a.Actions.Len())
	assert.NotEmpty(t, a.ID)
}

func TestNewAssignsExplicitID(t *testing.T) {
	t.Parallel()

	a := New(&Blueprint{Kind: "demo"}, Options{ID: "fixed"})
	assert.Equal(t, "fixed", a.ID)
}

func TestCheckKindRejectsMismatch(t *testing.T) {
	t.Parallel()

	a := New(&Blueprint{Kind: "demo.one"}, Options{})
	err := CheckKind("demo.two", a)
	require.Error(t, err)
	assert.ErrorIs(t, err, agenterrors.ErrValidation)

	assert.NoError(t, CheckKind("demo.one", a))
	assert.NoError(t, CheckKind("", a))
}

func TestSetDeepMergesAndMarksDirty(t *testing.T) {
	t.Parallel()

	a := New(&Blueprint{Kind: "demo"}, Options{InitialState: map[string]any{"x": 1}})
	a.DirtyState = false

	next, err := Set(a, map[string]any{"y": 2})
	require.NoError(t, err)
	assert.Equal(t, 1, next.State["x"])
	assert.Equal(t, 2, next.State["y"])
	assert.True(t, next.DirtyState)
}

func TestPlanAppendsInstructionsAndSetsDirtyEvenWhenEmpty(t *testing.T) {
	t.Parallel()

	a := New(&Blueprint{Kind: "demo", DefaultActions: []action.ID{"greet"}}, Options{})
	a.DirtyState = false

	next, err := Plan(a, List(), nil)
	require.NoError(t, err)
	assert.True(t, next.DirtyState)
	assert.Empty(t, next.PendingInstructions)

	next2, err := Plan(next, Pair("greet", map[string]any{"name": "ada"}), map[string]any{"trace": "t1"})
	require.NoError(t, err)
	require.Len(t, next2.PendingInstructions, 1)
	assert.Equal(t, action.ID("greet"), next2.PendingInstructions[0].Action)
	assert.Equal(t, "ada", next2.PendingInstructions[0].Params["name"])
	assert.Equal(t, "t1", next2.PendingInstructions[0].Context["trace"])
}

func TestPlanRejectsUnregisteredAction(t *testing.T) {
	t.Parallel()

	a := New(&Blueprint{Kind: "demo"}, Options{})
	_, err := Plan(a, ActionSpec("missing"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, agenterrors.ErrConfig)
}

func TestPlanRejectsNestedList(t *testing.T) {
	t.Parallel()

	a := New(&Blueprint{Kind: "demo", DefaultActions: []action.ID{"a"}}, Options{})
	_, err := Plan(a, List(ActionSpec("a"), List(ActionSpec("a"))), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, agenterrors.ErrExecution)
}

func TestCmdFallsBackToPassthroughWithoutStrategy(t *testing.T) {
	t.Parallel()

	a := New(&Blueprint{Kind: "demo", DefaultActions: []action.ID{"noop"}}, Options{})
	next, dirs, results := Cmd(context.Background(), a, ActionSpec("noop"), nil, StrategyContext{})

	assert.Empty(t, dirs)
	assert.Empty(t, results)
	assert.Equal(t, a.State, next.State)
}

func TestCmdNormalizeErrorProducesErrorDirective(t *testing.T) {
	t.Parallel()

	a := New(&Blueprint{Kind: "demo"}, Options{})
	next, dirs, results := Cmd(context.Background(), a, ActionSpec("missing"), nil, StrategyContext{})

	require.Len(t, dirs, 1)
	assert.Empty(t, results)
	assert.Equal(t, a.State, next.State)
}

func TestValidateNoopWithoutSchema(t *testing.T) {
	t.Parallel()

	a := New(&Blueprint{Kind: "demo"}, Options{})
	a.DirtyState = true
	next, err := Validate(context.Background(), a, ValidateOpts{})
	require.NoError(t, err)
	assert.False(t, next.DirtyState)
}
