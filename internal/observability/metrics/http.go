package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medqa"

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	answersTotal         *prometheus.CounterVec
	retrievedDocs        *prometheus.HistogramVec
	retrievalDuration    *prometheus.HistogramVec
	suggestionsTotal     *prometheus.CounterVec
	exchangeRecordsTotal *prometheus.CounterVec
	breakerState         *prometheus.GaugeVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	answersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "answers_total",
			Help:      "Total composed answers by confidence.",
		},
		[]string{"service", "confidence"},
	)
	retrievedDocs := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "documents",
			Help:      "Distribution of documents returned per retrieval.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Corpus ranking duration in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"service", "endpoint"},
	)
	suggestionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "suggestion_requests_total",
			Help:      "Total suggested-question requests by topic filter usage.",
		},
		[]string{"service", "filtered"},
	)
	exchangeRecordsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "exchange_records_total",
			Help:      "Total exchange recording attempts by status.",
		},
		[]string{"service", "status"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per operation (0 closed, 1 half-open, 2 open).",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		answersTotal,
		retrievedDocs,
		retrievalDuration,
		suggestionsTotal,
		exchangeRecordsTotal,
		breakerState,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		answersTotal:         answersTotal,
		retrievedDocs:        retrievedDocs,
		retrievalDuration:    retrievalDuration,
		suggestionsTotal:     suggestionsTotal,
		exchangeRecordsTotal: exchangeRecordsTotal,
		breakerState:         breakerState,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/assistant/history/"):
		return "/v1/assistant/history/{id}"
	default:
		return path
	}
}

// RecordAnswer observes one composed answer.
func (m *HTTPServerMetrics) RecordAnswer(service, confidence string, docCount int, duration time.Duration) {
	if confidence == "" {
		confidence = "unknown"
	}
	m.answersTotal.WithLabelValues(service, confidence).Inc()
	m.RecordRetrieval(service, "ask", docCount, duration)
}

func (m *HTTPServerMetrics) RecordRetrieval(service, endpoint string, docCount int, duration time.Duration) {
	m.retrievedDocs.WithLabelValues(service, endpoint).Observe(float64(docCount))
	m.retrievalDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordSuggestions(service string, filtered bool) {
	m.suggestionsTotal.WithLabelValues(service, strconv.FormatBool(filtered)).Inc()
}

func (m *HTTPServerMetrics) RecordExchange(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.exchangeRecordsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) SetBreakerState(service, operation string, state int) {
	m.breakerState.WithLabelValues(service, operation).Set(float64(state))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
