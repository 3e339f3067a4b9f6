// Package metrics exposes the dashboard's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns a private Prometheus registry and the collectors on it.
type Registry struct {
	reg *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	SourceLoads      *prometheus.CounterVec
	SourceDuration   *prometheus.HistogramVec
	WSClients        prometheus.Gauge
	OpportunityTiers *prometheus.GaugeVec
	Refreshes        *prometheus.CounterVec
}

// New registers every collector plus the Go runtime and process collectors.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiverx_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiverx_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
		SourceLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiverx_source_loads_total",
			Help: "Dataset loads by source and result.",
		}, []string{"source", "result"}),
		SourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiverx_source_load_duration_seconds",
			Help:    "Dataset load latency by source.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quiverx_ws_clients",
			Help: "Connected WebSocket clients.",
		}),
		OpportunityTiers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "quiverx_opportunities",
			Help: "Opportunities in the latest snapshot by profit tier.",
		}, []string{"tier"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiverx_refreshes_total",
			Help: "Background snapshot refreshes by result.",
		}, []string{"result"}),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.HTTPRequests, r.HTTPDuration,
		r.SourceLoads, r.SourceDuration,
		r.WSClients, r.OpportunityTiers, r.Refreshes,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// ObserveLoad records one dataset load.
func (r *Registry) ObserveLoad(source string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.SourceLoads.WithLabelValues(source, result).Inc()
	r.SourceDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveRequest records one HTTP request.
func (r *Registry) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	r.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	r.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// SetTierCounts replaces the per-tier opportunity gauge.
func (r *Registry) SetTierCounts(counts map[string]int) {
	r.OpportunityTiers.Reset()
	for tier, n := range counts {
		r.OpportunityTiers.WithLabelValues(tier).Set(float64(n))
	}
}

// ObserveRefresh counts one refresher cycle.
func (r *Registry) ObserveRefresh(err error) {
	if err != nil {
		r.Refreshes.WithLabelValues("error").Inc()
		return
	}
	r.Refreshes.WithLabelValues("ok").Inc()
}

// ClientConnected and ClientDisconnected track the WebSocket gauge.
func (r *Registry) ClientConnected()    { r.WSClients.Inc() }
func (r *Registry) ClientDisconnected() { r.WSClients.Dec() }
