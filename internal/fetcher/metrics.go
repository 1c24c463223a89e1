package fetcher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Attempt results used as the "result" label.
const (
	resultSuccess   = "success"
	resultMalformed = "malformed"
	resultError     = "error"
)

// Metrics holds the fetcher's prometheus collectors.
type Metrics struct {
	attempts *prometheus.CounterVec
	loads    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tremstore_fetch_attempts_total",
			Help: "Network fetch attempts per list and result",
		}, []string{"list", "result"}),
		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tremstore_loads_total",
			Help: "Completed loads per list and terminal status",
		}, []string{"list", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tremstore_fetch_duration_seconds",
			Help:    "Duration of single fetch attempts",
			Buckets: prometheus.DefBuckets,
		}, []string{"list"}),
	}
}

func (m *Metrics) observeAttempt(list, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(list, result).Inc()
	m.duration.WithLabelValues(list).Observe(d.Seconds())
}

func (m *Metrics) observeLoad(list string, status Status) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(list, string(status)).Inc()
}
