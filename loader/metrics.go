package loader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Load outcomes recorded by codec_module_loads_total
const (
	loadReady  = "ready"
	loadFailed = "failed"
	loadStale  = "stale"
)

// Metrics holds the Prometheus collectors a Loader reports to.
// A nil *Metrics records nothing.
type Metrics struct {
	state        *prometheus.GaugeVec
	loads        *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	ops          *prometheus.CounterVec
	opBytes      *prometheus.CounterVec
}

// NewMetrics creates the loader collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "codec_module_state",
				Help: "Current load state of each codec module (1 for the active state)",
			},
			[]string{"module", "state"},
		),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codec_module_loads_total",
				Help: "Completed codec module load attempts by result",
			},
			[]string{"module", "result"},
		),
		loadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codec_module_load_duration_seconds",
				Help:    "Time spent loading codec modules",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"module"},
		),
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codec_operations_total",
				Help: "Compress and decompress calls on ready modules by result",
			},
			[]string{"module", "op", "result"},
		),
		opBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codec_operation_bytes_total",
				Help: "Bytes passed into and returned from codec operations",
			},
			[]string{"module", "op", "direction"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.state, m.loads, m.loadDuration, m.ops, m.opBytes)
	}
	return m
}

func (m *Metrics) setState(module string, current State) {
	if m == nil {
		return
	}
	for _, s := range States {
		v := 0.0
		if s == current {
			v = 1
		}
		m.state.WithLabelValues(module, s.String()).Set(v)
	}
}

func (m *Metrics) observeLoad(module, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(module, result).Inc()
	if result != loadStale {
		m.loadDuration.WithLabelValues(module).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) observeOp(module, op string, in, out int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ops.WithLabelValues(module, op, result).Inc()
	m.opBytes.WithLabelValues(module, op, "in").Add(float64(in))
	if err == nil {
		m.opBytes.WithLabelValues(module, op, "out").Add(float64(out))
	}
}
