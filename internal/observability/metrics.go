package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics collects Prometheus metrics for the server.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	settlements     *prometheus.CounterVec
	settledAmount   *prometheus.CounterVec
	procedures      map[string]struct{}
}

// NewMetrics initializes the registry and the base metrics. Requests under a
// wildcard mount are labeled by path only when the path is one of procedures.
func NewMetrics(procedures ...string) *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splitledger_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "splitledger_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splitledger_settlements_total",
		Help: "Settle requests by strategy and outcome.",
	}, []string{"strategy", "outcome"})
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "splitledger_settled_amount_total",
		Help: "Sum of recorded settlement amounts by strategy.",
	}, []string{"strategy"})
	registry.MustRegister(requests, duration, settlements, settled)
	known := make(map[string]struct{}, len(procedures))
	for _, p := range procedures {
		known[p] = struct{}{}
	}
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		settlements:     settlements,
		settledAmount:   settled,
		procedures:      known,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := m.routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveSettlement counts one settle request. amount is only added on success.
func (m *Metrics) ObserveSettlement(strategy, outcome string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(strategy, outcome).Inc()
	if outcome == "ok" {
		m.settledAmount.WithLabelValues(strategy).Add(amount.InexactFloat64())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// routePattern prefers the RPC path so each procedure gets its own series.
// Unknown paths under a wildcard mount share the "unmatched" label.
func (m *Metrics) routePattern(r *http.Request) string {
	routeCtx := chi.RouteContext(r.Context())
	if routeCtx == nil {
		return "unknown"
	}
	pattern := routeCtx.RoutePattern()
	switch {
	case pattern == "":
		return "unknown"
	case strings.HasSuffix(pattern, "/*"):
		if _, ok := m.procedures[r.URL.Path]; ok {
			return r.URL.Path
		}
		return "unmatched"
	default:
		return pattern
	}
}
