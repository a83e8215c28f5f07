package mqp

import "fmt"

// StopMode selects the shutdown discipline of the delivery worker. The two
// modes are not equivalent and are never mixed: the mode is fixed when the
// publisher is built.
type StopMode int

const (
	// StopAfterQueued makes Stop append a stop marker at the tail of the
	// queue: every message appended before Stop is delivered, messages
	// appended after it stay queued until a future Start.
	StopAfterQueued StopMode = iota

	// StopWhenDrained makes Stop wait until the queue is empty and the
	// last delivery completed, so a producer that keeps appending can
	// delay shutdown indefinitely.
	StopWhenDrained
)

// Settings holds the general publisher configuration.
type Settings struct {
	StopMode         StopMode // shutdown discipline (default StopAfterQueued)
	DisconnectOnStop bool     // disconnect the transport session on Stop (drops a broker-side last will)
}

// validateSettings validates the stablished settings.
func validateSettings(s *Settings) error {
	switch s.StopMode {
	case StopAfterQueued, StopWhenDrained:
		return nil
	default:
		return fmt.Errorf("unknown stop mode: %d", s.StopMode)
	}
}
