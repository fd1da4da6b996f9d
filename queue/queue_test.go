package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt-labs/agentrt/signal"
)

func TestEnqueueDequeueIsFIFO(t *testing.T) {
	t.Parallel()

	q := New(10)
	a := signal.New("a", nil)
	b := signal.New("b", nil)

	require.True(t, q.Enqueue(a))
	require.True(t, q.Enqueue(b))

	first, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, a.ID, first.ID)

	second, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, b.ID, second.ID)
}

func TestEnqueueFrontJumpsQueue(t *testing.T) {
	t.Parallel()

	q := New(10)
	back := signal.New("back", nil)
	front := signal.New("front", nil)

	require.True(t, q.Enqueue(back))
	require.True(t, q.EnqueueFront(front))

	head, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, front.ID, head.ID)
}

func TestEnqueueRejectsWhenAtCapacity(t *testing.T) {
	t.Parallel()

	q := New(1)
	require.True(t, q.Enqueue(signal.New("a", nil)))
	assert.False(t, q.Enqueue(signal.New("b", nil)))
	assert.Equal(t, 1, q.Len())
}

func TestZeroMaxSizeOverflowsImmediately(t *testing.T) {
	t.Parallel()

	q := New(0)
	assert.False(t, q.Enqueue(signal.New("a", nil)))
	assert.False(t, q.EnqueueFront(signal.New("b", nil)))
	assert.Equal(t, 0, q.Len())
}

func TestDequeueOnEmptyReturnsFalse(t *testing.T) {
	t.Parallel()

	q := New(5)
	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestClearReturnsPriorSizeAndEmpties(t *testing.T) {
	t.Parallel()

	q := New(5)
	q.Enqueue(signal.New("a", nil))
	q.Enqueue(signal.New("b", nil))

	n := q.Clear()
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, q.Len())
}

func TestPeekDoesNotMutateQueue(t *testing.T) {
	t.Parallel()

	q := New(5)
	q.Enqueue(signal.New("a", nil))

	peeked := q.Peek()
	require.Len(t, peeked, 1)
	assert.Equal(t, 1, q.Len())
}
