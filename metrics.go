package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors a System reports to.
type Metrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
	state    *prometheus.GaugeVec
}

// NewMetrics creates the lifecycle collectors and registers them with reg. Collectors that are already registered
// with reg are reused, so several Systems may share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "system",
			Name:      "lifecycle_duration_seconds",
			Help:      "Time spent by a component in a lifecycle phase",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"system", "component", "phase", "result"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "system",
			Name:      "lifecycle_failures_total",
			Help:      "Number of failed lifecycle phases per component",
		}, []string{"system", "component", "phase"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "system",
			Name:      "component_state",
			Help:      "Current lifecycle state per component (0=stopped, 1=starting, 2=started, 3=stopping, 4=failed)",
		}, []string{"system", "component"}),
	}

	var err error
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.failures, err = register(reg, m.failures); err != nil {
		return nil, err
	}
	if m.state, err = register(reg, m.state); err != nil {
		return nil, err
	}

	return m, nil
}

// register registers c with reg, returning the collector already registered in its place if there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register lifecycle metrics: %w", err)
	}
	return c, nil
}

// observe records the outcome of one component phase.
func (m *Metrics) observe(system, component string, ph Phase, d time.Duration, err error) {
	if m == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "failure"
		m.failures.WithLabelValues(system, component, ph.String()).Inc()
	}
	m.duration.WithLabelValues(system, component, ph.String(), result).Observe(d.Seconds())
}

// setState records the current state of a component.
func (m *Metrics) setState(system, component string, st State) {
	if m == nil {
		return
	}
	m.state.WithLabelValues(system, component).Set(float64(st))
}
