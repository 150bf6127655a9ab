/**
 * Copyright (c) 2024, ovrEngineered.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package queue implements the bounded single-producer/single-consumer
// update queue that hands raw parsed advertisements from the radio
// callback context to the registry's consumer tick (spec §4.2).
package queue

import (
	"sync"

	"github.com/ovrEngineered/ovrBeaconGateway-esp32/pkg/beacon"
)

// DefaultCapacity is MAX_QUEUE from spec §6.
const DefaultCapacity = 4

// Queue is a fixed-capacity FIFO of beacon.Update values backed by a
// preallocated slot array, so Enqueue never allocates; BulkDequeuePeek
// does allocate, returning a fresh copy of the queued run on each call.
// On overflow it drops the newest item silently (spec §4.2): the
// producer never blocks and never overwrites older entries.
//
// A short-held mutex protects head/tail/count instead of a lock-free
// ring, per spec §4.2's "either is acceptable" for the single-producer
// case; this keeps the implementation and its tests simple while still
// keeping the producer's Enqueue path non-blocking and allocation-free.
type Queue struct {
	mu       sync.Mutex
	slots    []beacon.Update
	head     int // next slot to dequeue
	count    int
	dropped  uint64
}

// New creates a Queue with the given fixed capacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{slots: make([]beacon.Update, capacity)}
}

// Enqueue appends an update to the tail of the queue. If the queue is
// full, the update is dropped and Enqueue returns false; the caller
// (the registry's submitAdvertisement) is expected to log this rarely,
// not on every drop.
func (q *Queue) Enqueue(u beacon.Update) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == len(q.slots) {
		q.dropped++
		return false
	}

	tail := (q.head + q.count) % len(q.slots)
	q.slots[tail] = u
	q.count++
	return true
}

// BulkDequeuePeek returns a contiguous-order copy of every currently
// queued update without removing them, letting the consumer amortize
// the per-tick cost of processing a burst (spec §4.2). Call
// BulkDequeueCommit with the returned length once the caller is done
// reading.
func (q *Queue) BulkDequeuePeek() []beacon.Update {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]beacon.Update, q.count)
	for i := 0; i < q.count; i++ {
		out[i] = q.slots[(q.head+i)%len(q.slots)]
	}
	return out
}

// BulkDequeueCommit drops the given number of updates from the head of
// the queue, matching a prior BulkDequeuePeek.
func (q *Queue) BulkDequeueCommit(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n > q.count {
		n = q.count
	}
	q.head = (q.head + n) % len(q.slots)
	q.count -= n
}

// Len returns the number of updates currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Capacity returns the fixed maximum number of updates the queue holds.
func (q *Queue) Capacity() int {
	return len(q.slots)
}

// Dropped returns the cumulative count of updates dropped due to a full
// queue, for metrics and rare warn-level logging.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
