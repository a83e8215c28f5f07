package metrics

// Counter defines the contract for counters.
type Counter interface {
	// Inc increments the counter by a delta.
	Inc(delta int64)
}

// Gauge defines the contract for gauges.
type Gauge interface {
	// Update sets the current value of the gauge.
	Update(value float64)
}

type NopCounter struct{}

var _ Counter = (*NopCounter)(nil)

func (*NopCounter) Inc(delta int64) {} //nolint:all

type NopGauge struct{}

var _ Gauge = (*NopGauge)(nil)

func (*NopGauge) Update(value float64) {} //nolint:all
