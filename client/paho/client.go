package paho

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/mqpub/mqpub/client"
	"github.com/mqpub/mqpub/logger"
)

// publishQos requests the exactly-once broker handshake (MQTT QoS 2) for
// every message sent through this client.
const publishQos byte = 2

// disconnectQuiesce is the time in milliseconds given to the underlying
// client to flush its work before the network session is closed.
const disconnectQuiesce uint = 250

// Client adapts an MQTT session from paho.mqtt.golang to the client.Client
// contract. The paho network loop is managed internally by Connect and
// Disconnect.
type Client struct {
	client mqtt.Client
	logger logger.Logger
}

var _ client.Client = (*Client)(nil)
var _ logger.Loggable = (*Client)(nil)

// New creates a Client on top of an already configured paho client.
func New(c mqtt.Client) *Client {
	if c == nil {
		panic("an mqtt client is mandatory")
	}
	return &Client{
		client: c,
		logger: &logger.NopLogger{},
	}
}

// NewFromOptions creates a Client from paho client options.
func NewFromOptions(opts *mqtt.ClientOptions) *Client {
	if opts == nil {
		panic("client options are mandatory")
	}
	return New(mqtt.NewClient(opts))
}

func (c *Client) SetLogger(l logger.Logger) {
	c.logger = l
}

func (c *Client) Connect() error {
	t := c.client.Connect()
	t.Wait()
	return t.Error()
}

func (c *Client) Disconnect() {
	c.client.Disconnect(disconnectQuiesce)
}

func (c *Client) Publish(topic string, payload []byte, retain bool) (client.Delivery, error) {
	return &delivery{token: c.client.Publish(topic, publishQos, retain, payload)}, nil
}

// delivery adapts a paho token to the client.Delivery contract.
type delivery struct {
	token mqtt.Token
}

var _ client.Delivery = (*delivery)(nil)

func (d *delivery) Wait() error {
	d.token.Wait()
	return d.token.Error()
}
