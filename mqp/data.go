package mqp

// PublishRequest is the unit of work held in the outbound queue: one
// message waiting to be delivered to the broker.
type PublishRequest struct {
	Topic   string // channel the payload is published to
	Payload []byte // opaque message body
	Retain  bool   // ask the broker to keep the payload as the topic's last known value
}
