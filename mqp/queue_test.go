package mqp

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueueOrdering(t *testing.T) {
	q := newOutboundQueue()
	for i := 0; i < 10; i++ {
		q.push(entry{req: &PublishRequest{Topic: "t", Payload: []byte(fmt.Sprintf("%d", i))}})
	}
	assert.Equal(t, 10, q.size())

	for i := 0; i < 10; i++ {
		e, ok := q.pop()
		assert.True(t, ok)
		assert.Equal(t, fmt.Sprintf("%d", i), string(e.req.Payload))
		q.done()
	}
	assert.Equal(t, 0, q.size())
}

func TestQueuePopBlocksUntilPush(t *testing.T) {
	q := newOutboundQueue()
	popped := make(chan entry, 1)

	go func() {
		e, ok := q.pop()
		assert.True(t, ok)
		q.done()
		popped <- e
	}()

	select {
	case <-popped:
		t.Fatal("pop returned on an empty queue")
	case <-time.After(50 * time.Millisecond):
	}

	q.push(entry{req: &PublishRequest{Topic: "t", Payload: []byte("late")}})

	select {
	case e := <-popped:
		assert.Equal(t, "late", string(e.req.Payload))
	case <-time.After(time.Second):
		t.Fatal("pop did not wake up after push")
	}
}

func TestQueueCloseWakesConsumer(t *testing.T) {
	q := newOutboundQueue()
	exited := make(chan bool, 1)

	go func() {
		_, ok := q.pop()
		exited <- ok
	}()

	q.close()

	select {
	case ok := <-exited:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("pop did not observe the close")
	}
}

func TestQueueCloseDrainsRemainingEntries(t *testing.T) {
	q := newOutboundQueue()
	q.push(entry{req: &PublishRequest{Topic: "t", Payload: []byte("pending")}})
	q.close()

	e, ok := q.pop()
	assert.True(t, ok)
	assert.Equal(t, "pending", string(e.req.Payload))
	q.done()

	_, ok = q.pop()
	assert.False(t, ok)

	q.reopen()
	q.push(entry{req: &PublishRequest{Topic: "t", Payload: []byte("after reopen")}})
	e, ok = q.pop()
	assert.True(t, ok)
	assert.Equal(t, "after reopen", string(e.req.Payload))
	q.done()
}

func TestQueueWaitIdleWaitsForInflight(t *testing.T) {
	q := newOutboundQueue()
	q.push(entry{req: &PublishRequest{Topic: "t", Payload: []byte("x")}})

	_, ok := q.pop()
	assert.True(t, ok)
	assert.Equal(t, 0, q.size())

	idle := make(chan struct{})
	go func() {
		q.waitIdle()
		close(idle)
	}()

	// the popped entry is still in flight, so waitIdle must not return yet.
	select {
	case <-idle:
		t.Fatal("waitIdle returned with a delivery in flight")
	case <-time.After(50 * time.Millisecond):
	}

	q.done()

	select {
	case <-idle:
	case <-time.After(time.Second):
		t.Fatal("waitIdle did not wake up after done")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers = 10
	const perProducer = 100

	q := newOutboundQueue()
	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				q.push(entry{req: &PublishRequest{
					Topic:   "t",
					Payload: []byte(fmt.Sprintf("%d-%d", id, j)),
				}})
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, q.size())

	seen := make(map[string]bool)
	for i := 0; i < producers*perProducer; i++ {
		e, ok := q.pop()
		assert.True(t, ok)
		assert.False(t, seen[string(e.req.Payload)], "duplicate entry %s", e.req.Payload)
		seen[string(e.req.Payload)] = true
		q.done()
	}
	assert.Equal(t, 0, q.size())
}
