package animation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts tween lifecycle events for an [Engine].
// A nil *Metrics records nothing.
type Metrics struct {
	Active    prometheus.Gauge
	Created   prometheus.Counter
	Completed prometheus.Counter
	Cancelled prometheus.Counter
	Loops     prometheus.Counter
}

// NewMetrics creates tween metrics and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "motion",
			Subsystem: "tween",
			Name:      "active",
			Help:      "Number of live tweens in the registry.",
		}),
		Created: f.NewCounter(prometheus.CounterOpts{
			Namespace: "motion",
			Subsystem: "tween",
			Name:      "created_total",
			Help:      "Tweens created.",
		}),
		Completed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "motion",
			Subsystem: "tween",
			Name:      "completed_total",
			Help:      "Tweens that ran every step and loop to the end.",
		}),
		Cancelled: f.NewCounter(prometheus.CounterOpts{
			Namespace: "motion",
			Subsystem: "tween",
			Name:      "cancelled_total",
			Help:      "Tweens disposed before completing.",
		}),
		Loops: f.NewCounter(prometheus.CounterOpts{
			Namespace: "motion",
			Subsystem: "tween",
			Name:      "loops_total",
			Help:      "Loop wraps across all tweens.",
		}),
	}
}

func (m *Metrics) created() {
	if m == nil {
		return
	}
	m.Created.Inc()
	m.Active.Inc()
}

func (m *Metrics) finished(completed bool) {
	if m == nil {
		return
	}
	m.Active.Dec()
	if completed {
		m.Completed.Inc()
	} else {
		m.Cancelled.Inc()
	}
}

func (m *Metrics) looped() {
	if m == nil {
		return
	}
	m.Loops.Inc()
}
