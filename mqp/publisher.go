// Package mqp implements an outbound queue publisher: producers append
// messages to an unbounded in-memory FIFO and a single background worker
// delivers them in order through a publish/subscribe transport client,
// waiting for the broker acknowledgment of each message before sending the
// next one. Appending never blocks on network I/O; delivery failures are
// only observable through the configured logger and error counter
// (fire-and-forget on the happy path). The queue is not persistent:
// messages still queued when the process dies are lost.
package mqp

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mqpub/mqpub/client"
	"github.com/mqpub/mqpub/logger"
	"github.com/mqpub/mqpub/metrics"
)

// Publisher owns one outbound queue and at most one delivery worker. Each
// instance is independent; create one per transport session.
type Publisher struct {
	settings   Settings
	client     client.Client
	logger     logger.Logger
	successCtr metrics.Counter
	errorCtr   metrics.Counter
	depthGauge metrics.Gauge

	queue *outboundQueue

	mu     sync.Mutex // guards worker
	worker *worker
}

// opt allows optional configuration.
type opt func(p *Publisher)

// WithLogger allows clients to configure an optional logger.
func WithLogger(l logger.Logger) opt {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCounters allows clients to configure optional delivered/failed
// counters for observability.
func WithCounters(success metrics.Counter, error metrics.Counter) opt {
	return func(p *Publisher) {
		if success != nil {
			p.successCtr = success
		}
		if error != nil {
			p.errorCtr = error
		}
	}
}

// WithQueueDepthGauge allows clients to configure an optional gauge
// tracking the queue depth.
func WithQueueDepthGauge(g metrics.Gauge) opt {
	return func(p *Publisher) {
		if g != nil {
			p.depthGauge = g
		}
	}
}

// New creates a Publisher that delivers through the provided transport
// client using the provided settings and options.
func New(s Settings, c client.Client, options ...opt) *Publisher {
	if c == nil {
		panic("you must provide a transport client")
	}

	if err := validateSettings(&s); err != nil {
		panic(err)
	}

	p := &Publisher{
		settings:   s,
		client:     c,
		logger:     &logger.NopLogger{},
		successCtr: &metrics.NopCounter{},
		errorCtr:   &metrics.NopCounter{},
		depthGauge: &metrics.NopGauge{},
		queue:      newOutboundQueue(),
	}

	for _, o := range options {
		o(p)
	}

	if l, ok := c.(logger.Loggable); ok {
		l.SetLogger(p.logger)
	}

	return p
}

// Start connects the transport client and launches the delivery worker.
// Starting a publisher whose worker is already running is reported as a
// warning and is a no-op; a second consumer is never spawned.
func (p *Publisher) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.worker != nil {
		p.logger.Warn("a delivery worker is already running; end it first or create a new publisher")
		return nil
	}

	if err := p.client.Connect(); err != nil {
		return fmt.Errorf("connecting the transport client: %w", err)
	}

	p.queue.reopen()
	w := &worker{
		id:         uuid.New(),
		queue:      p.queue,
		client:     p.client,
		logger:     p.logger,
		successCtr: p.successCtr,
		errorCtr:   p.errorCtr,
		depthGauge: p.depthGauge,
		done:       make(chan struct{}),
	}
	go w.launchWorker()
	p.worker = w

	return nil
}

// Stop halts the delivery worker according to the configured stop mode and
// joins it before returning; the worker goroutine is never left dangling.
// With StopAfterQueued the transport session is kept open unless
// DisconnectOnStop is set, so a broker-side last will can still fire.
// Stopping a publisher that is not running is a no-op, as is a second
// concurrent Stop.
func (p *Publisher) Stop() {
	// The lock is held for the whole shutdown so a concurrent Start
	// cannot spawn a second consumer while the current one is joined.
	// The worker never takes this lock.
	p.mu.Lock()
	defer p.mu.Unlock()

	w := p.worker
	p.worker = nil
	if w == nil {
		return
	}

	switch p.settings.StopMode {
	case StopWhenDrained:
		p.queue.waitIdle()
		p.queue.close()
	default:
		p.queue.push(entry{stop: true})
	}

	<-w.done

	if p.settings.DisconnectOnStop {
		p.client.Disconnect()
	}
}

// Append enqueues a message for delivery and returns immediately; it never
// blocks on network I/O and is safe for concurrent use from any number of
// goroutines. Messages appended while no worker is running stay queued
// until the next Start.
func (p *Publisher) Append(topic string, payload []byte, retain bool) {
	p.queue.push(entry{req: &PublishRequest{
		Topic:   topic,
		Payload: payload,
		Retain:  retain,
	}})
	p.depthGauge.Update(float64(p.queue.size()))
}

// QueueSize returns the number of messages pending delivery, for
// monitoring and backpressure decisions made by the caller.
func (p *Publisher) QueueSize() int {
	return p.queue.size()
}

// Run is the scoped form of the publisher lifecycle: it builds a
// Publisher, starts it, invokes fn with it and guarantees Stop runs on
// every exit path, including an error returned by fn.
func Run(s Settings, c client.Client, fn func(*Publisher) error, options ...opt) error {
	p := New(s, c, options...)
	if err := p.Start(); err != nil {
		return err
	}
	defer p.Stop()

	return fn(p)
}
