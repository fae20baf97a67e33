package benchmark

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nvr-ai/tinybench/util"
)

// Instruments exposes engine progress as Prometheus metrics. A nil
// *Instruments is valid and records nothing.
type Instruments struct {
	samples      *prometheus.CounterVec
	unitDuration *prometheus.HistogramVec
	overtime     *prometheus.CounterVec
	warmUp       *prometheus.GaugeVec
	state        prometheus.Gauge
}

// NewInstruments registers the engine metrics on reg.
func NewInstruments(reg prometheus.Registerer) *Instruments {
	factory := promauto.With(reg)

	return &Instruments{
		// Labels: owner, operation
		samples: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tinybench",
			Subsystem: "engine",
			Name:      "samples_total",
			Help:      "Total measured samples per benchmark operation",
		}, []string{"owner", "operation"}),

		unitDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tinybench",
			Subsystem: "engine",
			Name:      "unit_duration_seconds",
			Help:      "Wall time spent measuring one benchmark unit",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"owner", "operation"}),

		// Labels: owner
		overtime: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tinybench",
			Subsystem: "engine",
			Name:      "overtime_units_total",
			Help:      "Units that ran past their share of the duration budget",
		}, []string{"owner"}),

		warmUp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tinybench",
			Subsystem: "engine",
			Name:      "warm_up_median_seconds",
			Help:      "Median warm-up measurement time per benchmark unit",
		}, []string{"owner", "operation", "parameter"}),

		state: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tinybench",
			Subsystem: "engine",
			Name:      "state",
			Help:      "Current engine state (0 idle, 1 warming up, 2 measuring, 3 done)",
		}),
	}
}

func (i *Instruments) setState(s State) {
	if i == nil {
		return
	}
	i.state.Set(float64(s))
}

func (i *Instruments) observeWarmUp(u Unit, median time.Duration) {
	if i == nil {
		return
	}
	i.warmUp.WithLabelValues(u.Owner, u.Operation, util.FormatParameter(u.Parameter)).Set(median.Seconds())
}

func (i *Instruments) observeUnit(u Unit, samples int, elapsed time.Duration) {
	if i == nil {
		return
	}
	i.samples.WithLabelValues(u.Owner, u.Operation).Add(float64(samples))
	i.unitDuration.WithLabelValues(u.Owner, u.Operation).Observe(elapsed.Seconds())
}

func (i *Instruments) observeOvertime(u Unit) {
	if i == nil {
		return
	}
	i.overtime.WithLabelValues(u.Owner).Inc()
}
