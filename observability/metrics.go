package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes prometheus counters for the pipeline. Optional; attach
// with WithMetrics.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	handlerFailures *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics builds the pipeline metric collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "observability_requests_total",
				Help: "Total number of requests observed by the pipeline (count)",
			},
			[]string{"method", "status"},
		),
		handlerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "observability_handler_failures_total",
				Help: "Total number of handler failures observed by the pipeline (count)",
			},
			[]string{"method"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "observability_request_duration_ms",
				Help:    "Handler execution duration in milliseconds",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
			},
			[]string{"method"},
		),
	}
}

// Register registers all collectors with the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.requestsTotal, m.handlerFailures, m.requestDuration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observeRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(durationMillis(duration))
}

func (m *Metrics) observeFailure(method string, duration time.Duration) {
	if m == nil {
		return
	}
	m.handlerFailures.WithLabelValues(method).Inc()
	m.requestDuration.WithLabelValues(method).Observe(durationMillis(duration))
}

func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
