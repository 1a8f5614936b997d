package parking

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors exposes session progress as Prometheus metrics.
type Collectors struct {
	lines     *prometheus.CounterVec
	absorbed  prometheus.Counter
	rollovers prometheus.Counter
	entries   *prometheus.GaugeVec
}

func NewCollectors() *Collectors {
	return &Collectors{
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parking",
			Name:      "session_lines_total",
			Help:      "Input lines processed, by verdict.",
		}, []string{"verdict"}),
		absorbed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parking",
			Name:      "session_absorbed_payments_total",
			Help:      "Same-day payments for vehicles already parked until tomorrow.",
		}),
		rollovers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parking",
			Name:      "session_rollovers_total",
			Help:      "Day rollovers detected by the session clock.",
		}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "parking",
			Name:      "ledger_entries",
			Help:      "Ledger entries per partition.",
		}, []string{"partition"}),
	}
}

func (c *Collectors) Register(reg prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{c.lines, c.absorbed, c.rollovers, c.entries} {
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collectors) LineStarted(ctx context.Context, _ int, _ string) context.Context {
	return ctx
}

func (c *Collectors) LineFinished(_ context.Context, res Result, sizes PartitionSizes) {
	c.lines.WithLabelValues(res.Verdict.String()).Inc()
	if res.Absorbed {
		c.absorbed.Inc()
	}
	if res.Rollover {
		c.rollovers.Inc()
	}
	c.entries.WithLabelValues(PartitionToday.String()).Set(float64(sizes.Today))
	c.entries.WithLabelValues(PartitionTomorrow.String()).Set(float64(sizes.Tomorrow))
}
