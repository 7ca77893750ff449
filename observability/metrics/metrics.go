// Package metrics exposes Prometheus counters for the crowdfunding engine's
// event stream.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lincot/solana-crowdfunding/core/events"
)

// Collector counts engine events by type. It implements events.Emitter, so a
// host wires it into the engine alongside its other emitters.
type Collector struct {
	events *prometheus.CounterVec
}

// NewCollector builds a collector and registers it with the registerer. A nil
// registerer uses the default registry.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crowdfunding",
			Name:      "events_total",
			Help:      "Ledger events emitted by the engine, by event type.",
		}, []string{"type"}),
	}
	if err := reg.Register(c.events); err != nil {
		return nil, err
	}
	return c, nil
}

// Emit implements events.Emitter.
func (c *Collector) Emit(evt events.Event) {
	if c == nil || evt == nil {
		return
	}
	c.events.WithLabelValues(evt.EventType()).Inc()
}
