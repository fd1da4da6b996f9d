package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt-labs/agentrt/signal"
)

type recordingAdapter struct {
	kind     string
	received []signal.Signal
	err      error
}

func (a *recordingAdapter) Kind() string { return a.kind }

func (a *recordingAdapter) Dispatch(ctx context.Context, s signal.Signal) error {
	a.received = append(a.received, s)
	return a.err
}

func TestDispatchFansOutToAllAdaptersByDefault(t *testing.T) {
	t.Parallel()

	a := &recordingAdapter{kind: "a"}
	b := &recordingAdapter{kind: "b"}
	l := NewList(nil, a, b)

	l.Dispatch(context.Background(), signal.New("demo.event", nil))

	require.Len(t, a.received, 1)
	require.Len(t, b.received, 1)
}

func TestDispatchOverrideRestrictsToMatchingKind(t *testing.T) {
	t.Parallel()

	a := &recordingAdapter{kind: "a"}
	b := &recordingAdapter{kind: "b"}
	l := NewList(nil, a, b)

	s := signal.New("demo.event", nil, signal.WithDispatch("b", nil))
	l.Dispatch(context.Background(), s)

	assert.Empty(t, a.received)
	require.Len(t, b.received, 1)
}

func TestDispatchFailureInOneAdapterDoesNotAbortOthers(t *testing.T) {
	t.Parallel()

	failing := &recordingAdapter{kind: "failing", err: errors.New("boom")}
	ok := &recordingAdapter{kind: "ok"}
	l := NewList(nil, failing, ok)

	l.Dispatch(context.Background(), signal.New("demo.event", nil))

	assert.Len(t, failing.received, 1)
	assert.Len(t, ok.received, 1)
}

func TestAdaptersReturnsACopy(t *testing.T) {
	t.Parallel()

	a := &recordingAdapter{kind: "a"}
	l := NewList(nil, a)

	got := l.Adapters()
	got[0] = &recordingAdapter{kind: "mutated"}

	assert.Equal(t, "a", l.Adapters()[0].Kind())
}
