package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mqpub/mqpub/client"
	"github.com/mqpub/mqpub/logger"
)

// defaultCommandTimeout bounds every Redis command issued by this client.
const defaultCommandTimeout = 5 * time.Second

// retainedKeyPrefix is where the last retained payload of a topic is kept,
// emulating broker-side message retention for late subscribers.
const retainedKeyPrefix = "retained:"

// Client implements the client.Client contract on top of Redis pub/sub.
// A PUBLISH command is the delivery; when the retain flag is set the
// payload is additionally stored under retainedKeyPrefix+topic so that new
// subscribers can read the channel's last known value.
type Client struct {
	rdb    redis.UniversalClient
	logger logger.Logger
}

var _ client.Client = (*Client)(nil)
var _ logger.Loggable = (*Client)(nil)

// New creates a Client on top of an already configured Redis client.
func New(rdb redis.UniversalClient) *Client {
	if rdb == nil {
		panic("a redis client is mandatory")
	}
	return &Client{
		rdb:    rdb,
		logger: &logger.NopLogger{},
	}
}

func (c *Client) SetLogger(l logger.Logger) {
	c.logger = l
}

func (c *Client) Connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultCommandTimeout)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

func (c *Client) Disconnect() {
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("closing the redis client", err)
	}
}

func (c *Client) Publish(topic string, payload []byte, retain bool) (client.Delivery, error) {
	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultCommandTimeout)
		defer cancel()

		if err := c.rdb.Publish(ctx, topic, payload).Err(); err != nil {
			done <- fmt.Errorf("publishing to channel %q: %w", topic, err)
			return
		}
		if retain {
			if err := c.rdb.Set(ctx, retainedKeyPrefix+topic, payload, 0).Err(); err != nil {
				done <- fmt.Errorf("retaining payload for channel %q: %w", topic, err)
				return
			}
		}
		done <- nil
	}()

	return &delivery{done: done}, nil
}

// delivery resolves once both the PUBLISH and the optional retained SET
// completed.
type delivery struct {
	done chan error
	once sync.Once
	err  error
}

var _ client.Delivery = (*delivery)(nil)

func (d *delivery) Wait() error {
	d.once.Do(func() {
		d.err = <-d.done
	})
	return d.err
}
