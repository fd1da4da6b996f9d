// Package queue implements the FIFO signal queue with backpressure used
// by the agent server: Enqueue/EnqueueFront/Dequeue/Clear, backed by a
// plain slice. Enqueue and Dequeue are O(1) amortized; EnqueueFront
// copies the whole queue and is O(n). The queue is owned exclusively by
// its server's single goroutine — no internal locking.
package queue

import "github.com/basalt-labs/agentrt/signal"

// Queue is a bounded FIFO of signals.
type Queue struct {
	items   []signal.Signal
	maxSize int
}

// New creates an empty Queue capped at maxSize. A maxSize of 0 means
// every Enqueue overflows immediately, per the boundary behavior in
// spec §8.
func New(maxSize int) *Queue {
	return &Queue{maxSize: maxSize}
}

// Len reports the current number of queued signals.
func (q *Queue) Len() int { return len(q.items) }

// MaxSize reports the configured capacity.
func (q *Queue) MaxSize() int { return q.maxSize }

// Enqueue appends s to the back of the queue. If the queue is already at
// capacity, it returns ok=false and the caller is expected to emit a
// queue.overflow signal using the returned size/max.
func (q *Queue) Enqueue(s signal.Signal) (ok bool) {
	if len(q.items) >= q.maxSize {
		return false
	}
	q.items = append(q.items, s)
	return true
}

// EnqueueFront prepends s to the front of the queue, used for
// directive-generated signals (e.g. Enqueue directives, cron/schedule
// firings) so cascaded work runs before unrelated queued items. Subject
// to the same capacity check as Enqueue.
func (q *Queue) EnqueueFront(s signal.Signal) (ok bool) {
	if len(q.items) >= q.maxSize {
		return false
	}
	q.items = append([]signal.Signal{s}, q.items...)
	return true
}

// Dequeue removes and returns the signal at the front of the queue.
func (q *Queue) Dequeue() (signal.Signal, bool) {
	if len(q.items) == 0 {
		return signal.Signal{}, false
	}
	s := q.items[0]
	q.items = q.items[1:]
	return s, true
}

// Clear empties the queue and returns its prior size, used by the
// caller to emit a queue.cleared event.
func (q *Queue) Clear() int {
	n := len(q.items)
	q.items = nil
	return n
}

// Peek returns a copy of the queued signals without removing them, for
// inspection (e.g. Server.State() snapshots).
func (q *Queue) Peek() []signal.Signal {
	out := make([]signal.Signal, len(q.items))
	copy(out, q.items)
	return out
}
