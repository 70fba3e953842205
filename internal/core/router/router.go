// Package router exposes the coverage operations over HTTP.
package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/coverage-stats/internal/core/model"
	"github.com/mohammed-shakir/coverage-stats/internal/core/observability"
	"github.com/mohammed-shakir/coverage-stats/internal/coverage"
	"github.com/mohammed-shakir/coverage-stats/internal/dataset"
	"github.com/mohammed-shakir/coverage-stats/internal/service"
)

type CoverageService interface {
	GlobalStatistics(ctx context.Context) (coverage.GlobalStats, error)
	StationStatistics(ctx context.Context, id *model.ID) (coverage.StationStats, bool, error)
	CheckCoverage(ctx context.Context, lat, lon float64) service.PointAnswer
	Fingerprint() string
	Reload(ctx context.Context) (dataset.Loaded, error)
}

const (
	routeGlobal        = "/v1/stats/global"
	routeRandomStation = "/v1/stats/stations/random"
	routeStation       = "/v1/stats/stations/{id}"
	routeCoverage      = "/v1/coverage"
	routeReload        = "/v1/dataset/reload"
)

// Mount registers the coverage routes on r.
func Mount(r chi.Router, logger *slog.Logger, svc CoverageService) {
	h := &handlers{log: logger, svc: svc}
	r.Get(routeGlobal, observed(routeGlobal, h.global))
	r.Get(routeRandomStation, observed(routeRandomStation, h.randomStation))
	r.Get(routeStation, observed(routeStation, h.station))
	r.Get(routeCoverage, observed(routeCoverage, h.coverage))
	r.Post(routeReload, observed(routeReload, h.reload))
}

type handlers struct {
	log *slog.Logger
	svc CoverageService
}

func (h *handlers) global(w http.ResponseWriter, r *http.Request) {
	if h.notModified(w, r) {
		return
	}
	st, err := h.svc.GlobalStatistics(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) randomStation(w http.ResponseWriter, r *http.Request) {
	h.stationStats(w, r, nil)
}

func (h *handlers) station(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, "missing station id")
		return
	}
	if h.notModified(w, r) {
		return
	}
	id := model.ParseID(raw)
	h.stationStats(w, r, &id)
}

func (h *handlers) stationStats(w http.ResponseWriter, r *http.Request, id *model.ID) {
	st, found, err := h.svc.StationStatistics(r.Context(), id)
	switch {
	case !found && id == nil:
		writeError(w, http.StatusNotFound, "no base stations found")
	case !found:
		writeError(w, http.StatusNotFound, fmt.Sprintf("base station %q not found", id.String()))
	case err != nil:
		h.fail(w, r, err)
	default:
		writeJSON(w, http.StatusOK, st)
	}
}

func (h *handlers) coverage(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := ParseCoordinates(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.notModified(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.CheckCoverage(r.Context(), lat, lon))
}

type reloadResponse struct {
	Fingerprint    string `json:"fingerprint"`
	Reused         bool   `json:"reused"`
	BaseStations   int    `json:"base_stations"`
	CoveragePoints int    `json:"coverage_points"`
}

func (h *handlers) reload(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.svc.Reload(r.Context())
	switch {
	case errors.Is(err, service.ErrReloadUnavailable):
		writeError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, dataset.ErrLoad):
		h.log.WarnContext(r.Context(), "dataset reload failed", "err", err)
		writeError(w, http.StatusBadGateway, err.Error())
	case err != nil:
		h.fail(w, r, err)
	default:
		writeJSON(w, http.StatusOK, reloadResponse{
			Fingerprint:    loaded.Fingerprint.String(),
			Reused:         loaded.Reused,
			BaseStations:   len(loaded.Dataset.BaseStations),
			CoveragePoints: loaded.Dataset.PointCount(),
		})
	}
}

// notModified sets the dataset ETag and answers 304 when the client already
// holds it.
func (h *handlers) notModified(w http.ResponseWriter, r *http.Request) bool {
	etag := `"` + h.svc.Fingerprint() + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, coverage.ErrInvalidGeometry) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// ParseCoordinates reads the required lat and lon query parameters.
func ParseCoordinates(r *http.Request) (lat, lon float64, err error) {
	q := r.URL.Query()
	lat, err = parseCoord(q.Get("lat"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid lat: %w", err)
	}
	lon, err = parseCoord(q.Get("lon"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid lon: %w", err)
	}
	return lat, lon, nil
}

func parseCoord(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("missing required parameter")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse float: %w", err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("must be finite")
	}
	return f, nil
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func observed(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next(sw, r)
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		// e.g. an infinite distance; JSON has no encoding for it
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(map[string]string{"error": "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
