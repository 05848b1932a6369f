package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveQuery(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.ObserveQuery("search", OutcomeFound, time.Millisecond)
	m.ObserveQuery("search", OutcomeFound, 2*time.Millisecond)
	m.ObserveQuery("search", OutcomeNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("search", OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("search", OutcomeNotFound)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.QueryDuration))
}

func TestObserveReload(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveReload(42, nil)
	m.ObserveReload(0, errors.New("bad file"))

	assert.Equal(t, 42.0, testutil.ToFloat64(m.SnapshotRecords), "failed reload keeps the gauge")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReloadsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReloadsTotal.WithLabelValues("error")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveQuery("search", OutcomeFound, time.Millisecond)
		m.ObserveTier("exact")
		m.ObserveReload(1, nil)
	})
}

func TestHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	m.ObserveTier("fuzzy")

	rec := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `effserve_resolve_tier_total{tier="fuzzy"} 1`))
}
