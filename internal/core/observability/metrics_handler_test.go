package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func scrape(t *testing.T) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsHandler_Smoke(t *testing.T) {
	ExposeBuildInfo("test")
	ObserveHTTP("GET", "/v1/stats/global", 200, 0.001)

	body := scrape(t)
	if !strings.Contains(body, "app_build_info") && !strings.Contains(body, "http_requests_total") {
		t.Fatalf("metrics payload did not contain expected metric names; got:\n%s", body)
	}
}

func TestOperationAndDatasetMetrics_Labels(t *testing.T) {
	ObserveOperation("station_stats", OutcomeNotFound, 0.0002)
	ObserveDatasetLoad("file", nil, 0.01)
	ObserveDatasetLoad("redis", errors.New("boom"), 0.01)
	SetDatasetSize(3, 42)

	body := scrape(t)
	for _, want := range []string{
		`coverage_operations_total{op="station_stats",outcome="not_found"} `,
		`coverage_operation_duration_seconds_count{op="station_stats"} `,
		`dataset_loads_total{outcome="ok",source="file"} `,
		`dataset_loads_total{outcome="error",source="redis"} `,
		"dataset_base_stations 3",
		"dataset_coverage_points 42",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}
