package mqp

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mqpub/mqpub/client"
	"github.com/mqpub/mqpub/logger"
	"github.com/mqpub/mqpub/metrics"
)

// worker is the single consumer of the outbound queue. It removes the
// oldest pending request and drives it to completion through the transport
// client before touching the next one, so there is never more than one
// delivery in flight.
type worker struct {
	id         uuid.UUID
	queue      *outboundQueue
	client     client.Client
	logger     logger.Logger
	successCtr metrics.Counter
	errorCtr   metrics.Counter
	depthGauge metrics.Gauge
	done       chan struct{}
}

// launchWorker implements the main delivery loop. It exits when the queue
// yields the stop marker or is closed after draining, and signals the exit
// by closing w.done.
func (w *worker) launchWorker() {
	defer close(w.done)

	w.logger.Debug(fmt.Sprintf("delivery worker '%s' started", w.id))
	for {
		e, ok := w.queue.pop()
		if !ok {
			w.logger.Debug(fmt.Sprintf("delivery worker '%s' stopping: queue closed", w.id))
			return
		}
		if e.stop {
			w.queue.done()
			w.logger.Debug(fmt.Sprintf("delivery worker '%s' stopping: stop marker reached", w.id))
			return
		}
		w.deliver(e.req)
		w.queue.done()
		w.depthGauge.Update(float64(w.queue.size()))
	}
}

// deliver publishes one request and blocks until the broker handshake for
// it completes. A failed delivery is logged and counted but never retried
// or requeued; the request is consumed either way.
func (w *worker) deliver(r *PublishRequest) {
	d, err := w.client.Publish(r.Topic, r.Payload, r.Retain)
	if err == nil {
		err = d.Wait()
	}
	if err != nil {
		w.logger.Error(fmt.Sprintf("delivering a message to topic '%s'", r.Topic), err)
		w.errorCtr.Inc(1)
		return
	}
	w.successCtr.Inc(1)
}
