package scenesync

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by a Syncer.
type Metrics struct {
	passes     *prometheus.CounterVec
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the syncer collectors with reg. Collectors already
// registered by another Syncer are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scenesync",
			Name:      "passes_total",
			Help:      "Reconciliation passes by mode and outcome.",
		}, []string{"mode", "outcome"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scenesync",
			Name:      "operations_total",
			Help:      "Object store mutations submitted by reconciliation passes.",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scenesync",
			Name:      "pass_duration_seconds",
			Help:      "Reconciliation pass latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.passes, err = register(reg, m.passes); err != nil {
		return nil, err
	}
	if m.operations, err = register(reg, m.operations); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observe(event SyncLogEvent) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case IsCancelled(event.Err):
		outcome = "cancelled"
	case event.Err != nil:
		outcome = "error"
	}
	m.passes.WithLabelValues(event.Mode, outcome).Inc()
	m.operations.WithLabelValues("create").Add(float64(event.Created))
	m.operations.WithLabelValues("update").Add(float64(event.Updated))
	m.operations.WithLabelValues("delete").Add(float64(event.Deleted))
	m.duration.WithLabelValues(event.Mode).Observe(event.Duration.Seconds())
}
