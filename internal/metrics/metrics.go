// Package metrics exposes Prometheus instruments for the HTTP layer and the
// mentorship lifecycle.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garnizeh/mentorship/pkg/models"
)

// Metrics owns a registry and the instruments registered on it.
type Metrics struct {
	reg *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	trainingRequests   *prometheus.CounterVec
	learningsStarted   prometheus.Counter
	learningsCompleted prometheus.Counter
	feedbackRating     prometheus.Histogram
}

// New creates the instruments plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		trainingRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "training_requests_total",
			Help: "Training requests that entered each status",
		}, []string{"status"}),
		learningsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "learning_processes_started_total",
			Help: "Total number of learning processes opened by an assignment",
		}),
		learningsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "learning_processes_completed_total",
			Help: "Total number of completed learning processes",
		}),
		feedbackRating: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedback_rating",
			Help:    "Ratings left when completing a learning process",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.trainingRequests,
		m.learningsStarted,
		m.learningsCompleted,
		m.feedbackRating,
	)
	return m
}

// Register adds collectors such as the engagement or database collectors.
func (m *Metrics) Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := m.reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveHTTP records one served request. endpoint is the route template,
// never the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, endpoint string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

func (m *Metrics) RequestStatus(status models.RequestStatus) {
	m.trainingRequests.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) LearningStarted(*models.LearningProcess) {
	m.learningsStarted.Inc()
}

func (m *Metrics) LearningCompleted(lp *models.LearningProcess) {
	m.learningsCompleted.Inc()
	if lp.Feedback != nil {
		m.feedbackRating.Observe(float64(lp.Feedback.Rating))
	}
}
