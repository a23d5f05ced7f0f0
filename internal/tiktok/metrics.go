package tiktok

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records upstream TikTok calls.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the upstream collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tiktok_upstream_requests_total",
				Help: "Total number of requests sent to TikTok, by endpoint and outcome.",
			},
			[]string{"endpoint", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tiktok_upstream_request_duration_seconds",
				Help:    "Latency of requests sent to TikTok.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(endpoint string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, outcome(err)).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
