package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mohammed-shakir/coverage-stats/internal/core/model"
	"github.com/mohammed-shakir/coverage-stats/internal/core/observability"
)

// Fingerprint is the xxhash64 of the raw document.
type Fingerprint uint64

func (f Fingerprint) String() string { return fmt.Sprintf("%016x", uint64(f)) }

type Loaded struct {
	Dataset     *model.Dataset
	Fingerprint Fingerprint
	Source      string
	// true when the decoded dataset came from the cache
	Reused bool
}

// Loader fetches documents and keeps recently decoded datasets keyed by
// fingerprint, so reloading an unchanged document skips decoding.
type Loader struct {
	log *slog.Logger

	mu    sync.Mutex
	cache *lru.Cache[Fingerprint, *model.Dataset]
}

func NewLoader(log *slog.Logger, cacheSize int) *Loader {
	if log == nil {
		log = slog.Default()
	}
	if cacheSize <= 0 {
		cacheSize = 8
	}
	c, _ := lru.New[Fingerprint, *model.Dataset](cacheSize)
	return &Loader{log: log, cache: c}
}

// Load never returns a partially decoded dataset; every failure is a *LoadError.
func (l *Loader) Load(ctx context.Context, src Source) (Loaded, error) {
	start := time.Now()
	out, err := l.load(ctx, src)
	observability.ObserveDatasetLoad(src.Kind(), err, time.Since(start).Seconds())
	if err != nil {
		l.log.ErrorContext(ctx, "dataset load failed", "source", src.Name(), "err", err)
		return Loaded{}, &LoadError{Source: src.Name(), Err: err}
	}
	observability.SetDatasetSize(len(out.Dataset.BaseStations), out.Dataset.PointCount())
	l.log.InfoContext(ctx, "dataset loaded",
		"source", src.Name(),
		"fingerprint", out.Fingerprint.String(),
		"base_stations", len(out.Dataset.BaseStations),
		"reused", out.Reused,
		"elapsed", time.Since(start).String())
	return out, nil
}

func (l *Loader) load(ctx context.Context, src Source) (Loaded, error) {
	raw, err := src.Fetch(ctx)
	if err != nil {
		return Loaded{}, err
	}
	fp := Fingerprint(xxhash.Sum64(raw))

	l.mu.Lock()
	ds, ok := l.cache.Get(fp)
	l.mu.Unlock()
	if ok {
		return Loaded{Dataset: ds, Fingerprint: fp, Source: src.Name(), Reused: true}, nil
	}

	ds, err = Decode(raw)
	if err != nil {
		return Loaded{}, err
	}
	l.mu.Lock()
	l.cache.Add(fp, ds)
	l.mu.Unlock()
	return Loaded{Dataset: ds, Fingerprint: fp, Source: src.Name()}, nil
}
