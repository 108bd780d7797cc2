package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/always-cache/httpcache/cache"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New(nil, nil)
	m.ObserveRequest("hit")
	m.ObserveRequest("hit")
	m.ObserveRequest("fwd=uri-miss")
	m.ObserveCommit(CommitStored)
	m.ObserveListenerFailure("response")
	m.ObserveInvalidations(2)

	if v := testutil.ToFloat64(m.lookups.WithLabelValues("hit")); v != 2 {
		t.Fatalf("Hits are %v", v)
	}
	if v := testutil.ToFloat64(m.commits.WithLabelValues(CommitStored)); v != 1 {
		t.Fatalf("Commits are %v", v)
	}
	if v := testutil.ToFloat64(m.listenerFailures.WithLabelValues("response")); v != 1 {
		t.Fatalf("Listener failures are %v", v)
	}
	if v := testutil.ToFloat64(m.invalidations); v != 2 {
		t.Fatalf("Invalidations are %v", v)
	}
}

func TestStatsGauges(t *testing.T) {
	registry := prometheus.NewRegistry()
	stats := cache.Stats{Entries: 3, Bytes: 1200, Evictions: 7}
	New(registry, func() cache.Stats { return stats })

	expected := `
# HELP httpcache_stored_bytes Bytes accounted to stored entries
# TYPE httpcache_stored_bytes gauge
httpcache_stored_bytes 1200
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "httpcache_stored_bytes"); err != nil {
		t.Fatal(err)
	}
	stats.Entries = 4
	if count, err := testutil.GatherAndCount(registry, "httpcache_entries", "httpcache_evictions_total"); err != nil || count != 2 {
		t.Fatalf("Count is %d, %v", count, err)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("hit")
	m.ObserveCommit(CommitError)
	m.ObserveListenerFailure("request")
	m.ObserveInvalidations(1)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	if rr.Code != 503 {
		t.Fatalf("Status code is %d", rr.Code)
	}
}

func TestHandler(t *testing.T) {
	m := New(nil, nil)
	m.ObserveRequest("hit")
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `httpcache_requests_total{status="hit"} 1`) {
		t.Fatalf("Body is %s", rr.Body.String())
	}
}

func TestSharedRegisterer(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := New(registry, func() cache.Stats { return cache.Stats{Entries: 1} })
	second := New(registry, func() cache.Stats { return cache.Stats{Entries: 2} })
	first.ObserveRequest("hit")
	second.ObserveRequest("hit")

	if v := testutil.ToFloat64(second.lookups.WithLabelValues("hit")); v != 2 {
		t.Fatalf("Hits are %v", v)
	}
	if n, err := testutil.GatherAndCount(registry, "httpcache_entries"); err != nil || n != 1 {
		t.Fatalf("Entries series: %d, %v", n, err)
	}
}
