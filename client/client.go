package client

// Delivery tracks a single in-flight publish until the broker-side
// handshake for it completes.
type Delivery interface {
	// Wait blocks until the broker acknowledged the message and returns
	// the delivery error, if any.
	Wait() error
}

// Client defines the narrow contract the publisher needs from a
// publish/subscribe transport session. Implementations own their network
// loop: Connect establishes the session and starts background I/O,
// Disconnect tears both down. Connect and Disconnect may also be called
// by clients independent of the publisher lifecycle.
type Client interface {

	// Connect establishes the network session with the broker.
	Connect() error

	// Disconnect tears down the network session. Note that a broker
	// typically drops the last will of a session that disconnects
	// cleanly, so callers relying on a last will should not disconnect.
	Disconnect()

	// Publish submits one message to the broker and returns a Delivery
	// handle for it. The acknowledgment level is fixed by the
	// implementation to the strongest handshake the transport offers.
	Publish(topic string, payload []byte, retain bool) (Delivery, error)
}
