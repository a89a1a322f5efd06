package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	discoveryPassesTotal.WithLabelValues("json", "init-check").Inc()
	if val := testutil.ToFloat64(discoveryPassesTotal.WithLabelValues("json", "init-check")); val != 1 {
		t.Errorf("Expected discoveryPassesTotal to be 1, got %f", val)
	}
}

func TestObserveDiscovery(t *testing.T) {
	ObserveDiscovery("html", "observe-check", 120*time.Millisecond)
	ObserveDiscovery("html", "observe-check", 80*time.Millisecond)

	if val := testutil.ToFloat64(discoveryPassesTotal.WithLabelValues("html", "observe-check")); val != 2 {
		t.Errorf("Expected 2 passes, got %f", val)
	}
	if val := testutil.CollectAndCount(discoveryPassDurationSeconds); val <= 0 {
		t.Errorf("Expected discoveryPassDurationSeconds to be observed, got %d", val)
	}
}

func TestObserveFetch(t *testing.T) {
	okBefore := testutil.ToFloat64(discoveryFetchesTotal.WithLabelValues("200"))
	errBefore := testutil.ToFloat64(discoveryFetchesTotal.WithLabelValues("error"))
	bytesBefore := testutil.ToFloat64(discoveryFetchBytesTotal)

	ObserveFetch(200, 512)
	ObserveFetch(0, 0)

	if val := testutil.ToFloat64(discoveryFetchesTotal.WithLabelValues("200")) - okBefore; val != 1 {
		t.Errorf("Expected one 200 fetch, got %f", val)
	}
	if val := testutil.ToFloat64(discoveryFetchBytesTotal) - bytesBefore; val != 512 {
		t.Errorf("Expected 512 bytes, got %f", val)
	}
	if val := testutil.ToFloat64(discoveryFetchesTotal.WithLabelValues("error")) - errBefore; val != 1 {
		t.Errorf("Expected one failed fetch, got %f", val)
	}
}

func TestObserveFetchSeriesAreBounded(t *testing.T) {
	for status := 0; status < 1000; status++ {
		ObserveFetch(status, 1)
	}
	ObserveFetch(-5, 0)
	ObserveFetch(100000, 0)

	// "error", "other" and one series per code in 100..599.
	if val := testutil.CollectAndCount(discoveryFetchesTotal); val > 502 {
		t.Errorf("Expected at most 502 fetch series, got %d", val)
	}
}

func TestFetchStatusLabel(t *testing.T) {
	testCases := []struct {
		status int
		want   string
	}{
		{0, "error"},
		{99, "other"},
		{200, "200"},
		{404, "404"},
		{599, "599"},
		{600, "other"},
		{-1, "other"},
	}
	for _, tc := range testCases {
		if got := fetchStatusLabel(tc.status); got != tc.want {
			t.Errorf("fetchStatusLabel(%d) = %q; want %q", tc.status, got, tc.want)
		}
	}
}

func TestObserveRateLimitDelay(t *testing.T) {
	ObserveRateLimitDelay(250 * time.Millisecond)

	if val := testutil.CollectAndCount(rateLimitDelaySeconds); val != 1 {
		t.Errorf("Expected a single rateLimitDelaySeconds series, got %d", val)
	}
}
