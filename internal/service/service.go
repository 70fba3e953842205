// Package service runs the coverage operations against the active dataset
// with logging and metrics around each call.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mohammed-shakir/coverage-stats/internal/core/model"
	"github.com/mohammed-shakir/coverage-stats/internal/core/observability"
	"github.com/mohammed-shakir/coverage-stats/internal/coverage"
	"github.com/mohammed-shakir/coverage-stats/internal/dataset"
	"github.com/mohammed-shakir/coverage-stats/internal/logger"
	"github.com/mohammed-shakir/coverage-stats/internal/mapper"
)

const (
	OpGlobalStats  = "global_stats"
	OpStationStats = "station_stats"
	OpCheckPoint   = "check_coverage"
	OpReload       = "dataset_reload"
)

// ErrReloadUnavailable is returned by Reload when the service was built
// without a loader and source.
var ErrReloadUnavailable = errors.New("dataset reload not configured")

type Options struct {
	Picker coverage.Picker
	Mapper mapper.Interface
	H3Res  int
	// Loader and Source enable Reload.
	Loader *dataset.Loader
	Source dataset.Source
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PointAnswer is a point-coverage result annotated with the H3 cell of the
// queried coordinate and that cell's centre. Both are empty when the
// coordinate has no cell.
type PointAnswer struct {
	coverage.PointCoverage
	H3Cell   string  `json:"h3_cell,omitempty"`
	H3Center *LatLon `json:"h3_center,omitempty"`
}

type Service struct {
	log    *slog.Logger
	picker coverage.Picker
	mapper mapper.Interface
	h3Res  int
	loader *dataset.Loader
	source dataset.Source

	mu   sync.RWMutex
	data dataset.Loaded
}

func New(log *slog.Logger, data dataset.Loaded, opts Options) *Service {
	if log == nil {
		log = slog.Default()
	}
	p := opts.Picker
	if p == nil {
		p = NewPicker(0)
	}
	return &Service{
		log:    log,
		data:   data,
		picker: p,
		mapper: opts.Mapper,
		h3Res:  opts.H3Res,
		loader: opts.Loader,
		source: opts.Source,
	}
}

func (s *Service) current() dataset.Loaded {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *Service) Dataset() *model.Dataset { return s.current().Dataset }

func (s *Service) Fingerprint() string { return s.current().Fingerprint.String() }

// Readiness reports whether a dataset is loaded.
func (s *Service) Readiness() (bool, string) {
	d := s.current()
	return d.Dataset != nil, d.Fingerprint.String()
}

func (s *Service) ctx(ctx context.Context, d dataset.Loaded) context.Context {
	return logger.WithDataset(ctx, d.Fingerprint.String())
}

// Reload fetches the source again and swaps in the result. On failure the
// current dataset stays active. An unchanged document is served from the
// loader cache without decoding.
func (s *Service) Reload(ctx context.Context) (dataset.Loaded, error) {
	if s.loader == nil || s.source == nil {
		return dataset.Loaded{}, ErrReloadUnavailable
	}
	start := time.Now()
	next, err := s.loader.Load(ctx, s.source)
	if err != nil {
		s.observe(ctx, OpReload, observability.OutcomeError, start, err)
		return dataset.Loaded{}, err
	}
	s.mu.Lock()
	prev := s.data
	s.data = next
	s.mu.Unlock()
	s.observe(ctx, OpReload, observability.OutcomeOK, start, nil)
	s.log.InfoContext(s.ctx(ctx, next), "dataset swapped",
		"previous", prev.Fingerprint.String(),
		"reused", next.Reused,
		"changed", prev.Fingerprint != next.Fingerprint)
	return next, nil
}

func (s *Service) GlobalStatistics(ctx context.Context) (coverage.GlobalStats, error) {
	d := s.current()
	ctx = s.ctx(ctx, d)
	start := time.Now()
	st, err := coverage.GlobalStatistics(d.Dataset)
	s.observe(ctx, OpGlobalStats, outcome(err, true), start, err)
	return st, err
}

// StationStatistics reports on the station with the given id, or a random
// one when id is nil. found is false when no station matches.
func (s *Service) StationStatistics(ctx context.Context, id *model.ID) (coverage.StationStats, bool, error) {
	d := s.current()
	ctx = s.ctx(ctx, d)
	start := time.Now()
	st, found, err := coverage.StationStatistics(d.Dataset, id, s.picker)
	s.observe(ctx, OpStationStats, outcome(err, found), start, err)
	if found && err == nil {
		s.log.DebugContext(ctx, "station selected", "station_id", st.StationID.String(), "random", id == nil)
	}
	return st, found, err
}

func (s *Service) CheckCoverage(ctx context.Context, lat, lon float64) PointAnswer {
	d := s.current()
	ctx = s.ctx(ctx, d)
	start := time.Now()
	ans := PointAnswer{PointCoverage: coverage.QueryPoint(d.Dataset, lat, lon)}
	if s.mapper != nil {
		s.annotateCell(ctx, &ans)
	}
	s.observe(ctx, OpCheckPoint, observability.OutcomeOK, start, nil)
	return ans
}

func (s *Service) annotateCell(ctx context.Context, ans *PointAnswer) {
	cell, err := s.mapper.CellForPoint(ans.Lat, ans.Lon, s.h3Res)
	if err != nil {
		s.log.DebugContext(ctx, "no h3 cell for query point", "lat", ans.Lat, "lon", ans.Lon, "err", err)
		return
	}
	ans.H3Cell = cell
	lat, lon, err := s.mapper.Center(cell)
	if err != nil {
		s.log.DebugContext(ctx, "no h3 centre", "cell", cell, "err", err)
		return
	}
	ans.H3Center = &LatLon{Lat: lat, Lon: lon}
}

func (s *Service) observe(ctx context.Context, op, out string, start time.Time, err error) {
	elapsed := time.Since(start)
	observability.ObserveOperation(op, out, elapsed.Seconds())
	if err != nil {
		s.log.WarnContext(ctx, "coverage operation failed", "op", op, "err", err)
		return
	}
	s.log.DebugContext(ctx, "coverage operation", "op", op, "outcome", out, "elapsed", elapsed)
}

func outcome(err error, found bool) string {
	switch {
	case err != nil:
		return observability.OutcomeError
	case !found:
		return observability.OutcomeNotFound
	default:
		return observability.OutcomeOK
	}
}

type lockedPicker struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewPicker returns a goroutine-safe Picker. Seed 0 seeds from the clock.
func NewPicker(seed uint64) coverage.Picker {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedPicker{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *lockedPicker) IntN(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.r.IntN(n)
}
