// Package metrics exposes the query and reload counters of the service in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for QueriesTotal
const (
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
	OutcomeOK          = "ok"
)

// Metrics holds all Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	QueriesTotal    *prometheus.CounterVec
	ResolveTier     *prometheus.CounterVec
	QueryDuration   *prometheus.HistogramVec
	SnapshotRecords prometheus.Gauge
	ReloadsTotal    *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "effserve_queries_total",
				Help: "Total number of queries by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		ResolveTier: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "effserve_resolve_tier_total",
				Help: "Total number of resolutions by the tier that produced them",
			},
			[]string{"tier"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "effserve_query_duration_seconds",
				Help:    "Query duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5},
			},
			[]string{"op"},
		),
		SnapshotRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "effserve_snapshot_records",
				Help: "Number of records in the active snapshot",
			},
		),
		ReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "effserve_reloads_total",
				Help: "Total number of dataset reloads by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.QueriesTotal,
		m.ResolveTier,
		m.QueryDuration,
		m.SnapshotRecords,
		m.ReloadsTotal,
	)
	return m
}

// ObserveQuery counts one query and records how long it took.
func (m *Metrics) ObserveQuery(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(op, outcome).Inc()
	m.QueryDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveTier(tier string) {
	if m == nil {
		return
	}
	m.ResolveTier.WithLabelValues(tier).Inc()
}

// ObserveReload counts a reload attempt and, on success, updates the record gauge.
func (m *Metrics) ObserveReload(records int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.ReloadsTotal.WithLabelValues("ok").Inc()
	m.SnapshotRecords.Set(float64(records))
}

// Handler returns the /metrics handler for registry.
func Handler(registry prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Serve exposes registry on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, registry prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(registry))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Metrics server shutdown: %v", err)
		}
	}()

	log.Debugf("Serving metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
