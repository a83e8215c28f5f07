package tally

import (
	tally "github.com/uber-go/tally/v4"

	"github.com/mqpub/mqpub/metrics"
)

type Counter struct {
	Counter tally.Counter
}

var _ metrics.Counter = (*Counter)(nil)

func (c *Counter) Inc(delta int64) {
	c.Counter.Inc(delta)
}

type Gauge struct {
	Gauge tally.Gauge
}

var _ metrics.Gauge = (*Gauge)(nil)

func (g *Gauge) Update(value float64) {
	g.Gauge.Update(value)
}
