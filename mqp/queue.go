package mqp

import "sync"

// entry is one element of the outbound queue: either a publish request or
// the stop marker the worker exits on.
type entry struct {
	req  *PublishRequest
	stop bool
}

// outboundQueue is an unbounded, insertion-ordered buffer shared between
// any number of producers and a single consumer. Producers only push;
// the delivery worker is the only caller of pop and done. The consumer
// parks on a condition variable while the queue is empty instead of
// busy-polling, and waiters on waitIdle park until the queue is empty and
// nothing is in flight.
type outboundQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	idle     *sync.Cond
	entries  []entry
	inflight int
	closed   bool
}

func newOutboundQueue() *outboundQueue {
	q := &outboundQueue{}
	q.notEmpty = sync.NewCond(&q.mu)
	q.idle = sync.NewCond(&q.mu)
	return q
}

// push appends e at the tail. It never blocks and is safe to call from any
// goroutine, including while the queue is closed (entries pushed on a
// closed queue are consumed only after reopen).
func (q *outboundQueue) push(e entry) {
	q.mu.Lock()
	q.entries = append(q.entries, e)
	q.mu.Unlock()
	q.notEmpty.Signal()
}

// pop removes the oldest entry, suspending the caller while the queue is
// empty. It returns false once the queue is closed and exhausted. The
// entry stays accounted as in flight until done is called.
func (q *outboundQueue) pop() (entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.entries) == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if len(q.entries) == 0 {
		return entry{}, false
	}
	e := q.entries[0]
	q.entries[0] = entry{}
	q.entries = q.entries[1:]
	if len(q.entries) == 0 {
		q.entries = nil
	}
	q.inflight++
	return e, true
}

// done marks the last popped entry as fully processed and wakes waitIdle
// waiters when nothing is queued or in flight anymore.
func (q *outboundQueue) done() {
	q.mu.Lock()
	q.inflight--
	if len(q.entries) == 0 && q.inflight == 0 {
		q.idle.Broadcast()
	}
	q.mu.Unlock()
}

// size returns the number of entries not yet handed to the consumer. An
// entry being delivered is no longer counted.
func (q *outboundQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// waitIdle suspends the caller until the queue is empty and the consumer
// has no delivery in flight.
func (q *outboundQueue) waitIdle() {
	q.mu.Lock()
	for len(q.entries) > 0 || q.inflight > 0 {
		q.idle.Wait()
	}
	q.mu.Unlock()
}

// close wakes a consumer parked in pop so it can observe the shutdown.
// Closing only affects consumption; producers can still push.
func (q *outboundQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.notEmpty.Broadcast()
}

// reopen makes the queue consumable again after close.
func (q *outboundQueue) reopen() {
	q.mu.Lock()
	q.closed = false
	q.mu.Unlock()
}
