package test

import (
	"sync"
	"sync/atomic"
	"time"

	tally "github.com/uber-go/tally/v4"

	"github.com/mqpub/mqpub/client"
	"github.com/mqpub/mqpub/logger"
)

// PublishedMessage records one publish observed by the mocked client.
type PublishedMessage struct {
	Topic   string
	Payload []byte
	Retain  bool
}

// MockedClient implements client.Client in memory, recording every publish
// in order and tracking how many deliveries were ever in flight at the
// same time.
type MockedClient struct {
	ConnectErr error         // returned by Connect
	PublishErr error         // returned by Publish
	WaitErr    error         // returned by Delivery.Wait
	WaitDelay  time.Duration // artificial broker latency per delivery
	Snitch     chan PublishedMessage

	mu          sync.Mutex
	published   []PublishedMessage
	connects    int
	disconnects int
	inFlight    int32
	maxInFlight int32
}

var _ client.Client = (*MockedClient)(nil)

func (c *MockedClient) Connect() error {
	c.mu.Lock()
	c.connects++
	c.mu.Unlock()
	return c.ConnectErr
}

func (c *MockedClient) Disconnect() {
	c.mu.Lock()
	c.disconnects++
	c.mu.Unlock()
}

func (c *MockedClient) Publish(topic string, payload []byte, retain bool) (client.Delivery, error) {
	n := atomic.AddInt32(&c.inFlight, 1)
	for {
		max := atomic.LoadInt32(&c.maxInFlight)
		if n <= max || atomic.CompareAndSwapInt32(&c.maxInFlight, max, n) {
			break
		}
	}

	if c.PublishErr != nil {
		atomic.AddInt32(&c.inFlight, -1)
		return nil, c.PublishErr
	}

	m := PublishedMessage{Topic: topic, Payload: payload, Retain: retain}
	c.mu.Lock()
	c.published = append(c.published, m)
	c.mu.Unlock()

	// send the message to the outside in order to assert it.
	if c.Snitch != nil {
		c.Snitch <- m
	}

	return &MockedDelivery{client: c}, nil
}

// Published returns a copy of the messages published so far, in order.
func (c *MockedClient) Published() []PublishedMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]PublishedMessage(nil), c.published...)
}

func (c *MockedClient) Connects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connects
}

func (c *MockedClient) Disconnects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnects
}

// MaxInFlight returns the highest number of unacknowledged deliveries ever
// observed at once.
func (c *MockedClient) MaxInFlight() int32 {
	return atomic.LoadInt32(&c.maxInFlight)
}

type MockedDelivery struct {
	client *MockedClient
}

var _ client.Delivery = (*MockedDelivery)(nil)

func (d *MockedDelivery) Wait() error {
	if d.client.WaitDelay > 0 {
		time.Sleep(d.client.WaitDelay)
	}
	atomic.AddInt32(&d.client.inFlight, -1)
	return d.client.WaitErr
}

// TestLogger implements logger.Logger recording every message.
type TestLogger struct {
	mu     sync.Mutex
	infos  []string
	debugs []string
	warns  []string
	errors []string
}

var _ logger.Logger = (*TestLogger)(nil)

func (l *TestLogger) Info(msg string) {
	l.mu.Lock()
	l.infos = append(l.infos, msg)
	l.mu.Unlock()
}

func (l *TestLogger) Debug(msg string) {
	l.mu.Lock()
	l.debugs = append(l.debugs, msg)
	l.mu.Unlock()
}

func (l *TestLogger) Warn(msg string) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func (l *TestLogger) Error(msg string, err error) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *TestLogger) Warns() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

func (l *TestLogger) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errors...)
}

// TestCounter implements metrics.Counter on an atomic value.
type TestCounter struct {
	Ctr int64
}

func (c *TestCounter) Inc(delta int64) {
	atomic.AddInt64(&c.Ctr, delta)
}

func (c *TestCounter) Value() int64 {
	return atomic.LoadInt64(&c.Ctr)
}

// TestGauge implements metrics.Gauge remembering the last value.
type TestGauge struct {
	mu   sync.Mutex
	last float64
}

func (g *TestGauge) Update(value float64) {
	g.mu.Lock()
	g.last = value
	g.mu.Unlock()
}

func (g *TestGauge) Last() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// MockedTallyCounter implements tally.Counter for the tally adapter tests.
type MockedTallyCounter struct {
	Ctr    int64
	Output chan int64
}

var _ tally.Counter = (*MockedTallyCounter)(nil)

func (c *MockedTallyCounter) Inc(delta int64) {
	c.Ctr += delta
	c.Output <- c.Ctr
}

// MockedTallyGauge implements tally.Gauge for the tally adapter tests.
type MockedTallyGauge struct {
	Val    float64
	Output chan float64
}

var _ tally.Gauge = (*MockedTallyGauge)(nil)

func (g *MockedTallyGauge) Update(value float64) {
	g.Val = value
	g.Output <- g.Val
}
