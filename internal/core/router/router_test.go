package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/coverage-stats/internal/coverage"
	"github.com/mohammed-shakir/coverage-stats/internal/dataset"
	h3mapper "github.com/mohammed-shakir/coverage-stats/internal/mapper/h3"
	"github.com/mohammed-shakir/coverage-stats/internal/service"
)

const doc = `{"min_lat":0,"max_lat":1,"min_lon":0,"max_lon":1,"step":1,"baseStations":[
	{"id":1,"ants":[{"id":1,"pts":[[0,0,5],[1,1,7]]}]},
	{"id":"b","ants":[{"id":2,"pts":[[1,1,9]]}]}
]}`

type zeroPicker struct{}

func (zeroPicker) IntN(int) int { return 0 }

func newRouter(t *testing.T, body string) http.Handler {
	t.Helper()
	ds, err := dataset.Decode([]byte(body))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(log, dataset.Loaded{Dataset: ds, Fingerprint: 0x1234}, service.Options{
		Picker: zeroPicker{},
		Mapper: h3mapper.New(),
		H3Res:  6,
	})
	r := chi.NewRouter()
	Mount(r, log, svc)
	return r
}

func get(t *testing.T, h http.Handler, target string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGlobalStats_JSONAndETag(t *testing.T) {
	h := newRouter(t, doc)
	rr := get(t, h, "/v1/stats/global")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	if rr.Header().Get("ETag") != `"0000000000001234"` {
		t.Fatalf("etag=%q", rr.Header().Get("ETag"))
	}
	var st coverage.GlobalStats
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.TotalBaseStations != 2 || st.MoreThanOneAntenna != 1 || st.ExactlyOneAntenna != 1 || st.NoAntennaCoverage != 2 {
		t.Fatalf("unexpected stats %+v", st)
	}

	rr = get(t, h, "/v1/stats/global", "If-None-Match", `"0000000000001234"`)
	if rr.Code != http.StatusNotModified {
		t.Fatalf("status=%d want 304", rr.Code)
	}
}

func TestGlobalStats_InvalidGeometryIs422(t *testing.T) {
	h := newRouter(t, `{"min_lat":0,"max_lat":1,"min_lon":0,"max_lon":1,"step":0,"baseStations":[]}`)
	if rr := get(t, h, "/v1/stats/global"); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d want 422", rr.Code)
	}
}

func TestStationStats_ByIDAndRandom(t *testing.T) {
	h := newRouter(t, doc)

	rr := get(t, h, "/v1/stats/stations/b")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	var st coverage.StationStats
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.StationID != "b" || st.TopCoveringAntenna == nil || st.TopCoveringAntenna.AntennaID != "2" {
		t.Fatalf("unexpected station %+v", st)
	}

	rr = get(t, h, "/v1/stats/stations/random")
	if rr.Code != http.StatusOK {
		t.Fatalf("random status=%d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.StationID != "1" {
		t.Fatalf("random picked %s want 1", st.StationID)
	}

	if rr := get(t, h, "/v1/stats/stations/01"); rr.Code != http.StatusOK {
		t.Fatalf("zero-padded numeric id should match, status=%d", rr.Code)
	}
	if rr := get(t, h, "/v1/stats/stations/404"); rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404", rr.Code)
	}
}

func TestRandomStation_EmptyDatasetIs404(t *testing.T) {
	h := newRouter(t, `{"min_lat":0,"max_lat":1,"min_lon":0,"max_lon":1,"step":1,"baseStations":[]}`)
	if rr := get(t, h, "/v1/stats/stations/random"); rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404", rr.Code)
	}
}

func TestCoverage_CoveredAndNearest(t *testing.T) {
	h := newRouter(t, doc)

	rr := get(t, h, "/v1/coverage?lat=1&lon=1")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	var ans service.PointAnswer
	if err := json.Unmarshal(rr.Body.Bytes(), &ans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ans.Covering) != 2 || ans.Nearest != nil || ans.H3Cell == "" {
		t.Fatalf("unexpected answer %+v", ans)
	}
	if ans.H3Center == nil || ans.H3Center.Lat < 0.5 || ans.H3Center.Lat > 1.5 || ans.H3Center.Lon < 0.5 || ans.H3Center.Lon > 1.5 {
		t.Fatalf("h3 centre %+v should sit near (1,1)", ans.H3Center)
	}
	if ans.Covering[1].StationID != "b" || ans.Covering[1].Value.String() != "9" {
		t.Fatalf("unexpected second coverer %+v", ans.Covering[1])
	}

	rr = get(t, h, "/v1/coverage?lat=0.1&lon=0.2")
	ans = service.PointAnswer{}
	if err := json.Unmarshal(rr.Body.Bytes(), &ans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ans.Covering) != 0 || ans.Nearest == nil || ans.Nearest.Lat != 0 || ans.Nearest.Lon != 0 {
		t.Fatalf("unexpected nearest answer %+v", ans)
	}
}

func TestCoverage_BadCoordinates(t *testing.T) {
	h := newRouter(t, doc)
	for _, q := range []string{"", "?lat=1", "?lat=x&lon=1", "?lat=1&lon=NaN", "?lat=1&lon=Inf"} {
		if rr := get(t, h, "/v1/coverage"+q); rr.Code != http.StatusBadRequest {
			t.Fatalf("%q: status=%d want 400", q, rr.Code)
		}
	}
}

func newReloadRouter(t *testing.T) (http.Handler, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := dataset.NewLoader(log, 4)
	src := dataset.FileSource{Path: path}
	loaded, err := loader.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	svc := service.New(log, loaded, service.Options{Picker: zeroPicker{}, Loader: loader, Source: src})
	r := chi.NewRouter()
	Mount(r, log, svc)
	return r, path
}

func post(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, target, nil))
	return rr
}

func TestReload_UnchangedDocumentIsReused(t *testing.T) {
	h, _ := newReloadRouter(t)
	etag := get(t, h, "/v1/stats/global").Header().Get("ETag")

	rr := post(t, h, "/v1/dataset/reload")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	var resp reloadResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Reused || resp.BaseStations != 2 || resp.CoveragePoints != 3 {
		t.Fatalf("unexpected reload %+v", resp)
	}
	if got := get(t, h, "/v1/stats/global").Header().Get("ETag"); got != etag {
		t.Fatalf("etag changed %s -> %s for an unchanged document", etag, got)
	}
}

func TestReload_ChangedDocumentSwapsDataset(t *testing.T) {
	h, path := newReloadRouter(t)
	etag := get(t, h, "/v1/stats/global").Header().Get("ETag")

	next := `{"min_lat":0,"max_lat":1,"min_lon":0,"max_lon":1,"step":1,"baseStations":[
		{"id":9,"ants":[{"id":1,"pts":[[0,0,5]]}]}]}`
	if err := os.WriteFile(path, []byte(next), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	rr := post(t, h, "/v1/dataset/reload")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	var resp reloadResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reused || resp.BaseStations != 1 {
		t.Fatalf("unexpected reload %+v", resp)
	}
	if got := get(t, h, "/v1/stats/global").Header().Get("ETag"); got == etag {
		t.Fatalf("etag should change after swapping datasets")
	}
	if rr := get(t, h, "/v1/stats/stations/9"); rr.Code != http.StatusOK {
		t.Fatalf("new station not served, status=%d", rr.Code)
	}
}

func TestReload_BrokenDocumentKeepsCurrent(t *testing.T) {
	h, path := newReloadRouter(t)
	if err := os.WriteFile(path, []byte(`{"min_lat":0}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rr := post(t, h, "/v1/dataset/reload"); rr.Code != http.StatusBadGateway {
		t.Fatalf("status=%d want 502", rr.Code)
	}
	if rr := get(t, h, "/v1/stats/stations/b"); rr.Code != http.StatusOK {
		t.Fatalf("previous dataset should still be served, status=%d", rr.Code)
	}
}

func TestReload_NotConfigured(t *testing.T) {
	h := newRouter(t, doc)
	if rr := post(t, h, "/v1/dataset/reload"); rr.Code != http.StatusNotImplemented {
		t.Fatalf("status=%d want 501", rr.Code)
	}
}

func TestCoverage_UnencodableDistanceIs500(t *testing.T) {
	h := newRouter(t, doc)
	rr := get(t, h, "/v1/coverage?lat=1.7976931348623157e308&lon=-1.7976931348623157e308")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want 500 body=%s", rr.Code, rr.Body)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Fatalf("expected JSON error body, got %s", rr.Body)
	}
}
