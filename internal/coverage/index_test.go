package coverage

import (
	"testing"

	"github.com/mohammed-shakir/coverage-stats/internal/core/model"
)

func TestBuildIndex_CountsRepeatedPointsWithinAntenna(t *testing.T) {
	ds := decode(t, twoStations)
	idx := BuildIndex(ds.Antennas())

	checks := map[model.GridPoint]int{
		{Lat: 0, Lon: 0}: 3,
		{Lat: 0, Lon: 1}: 2,
		{Lat: 1, Lon: 0}: 1,
		{Lat: 1, Lon: 1}: 1,
		{Lat: 5, Lon: 5}: 0,
	}
	for p, want := range checks {
		if got := idx.Count(p); got != want {
			t.Fatalf("Count(%s)=%d want %d", p, got, want)
		}
	}
	if idx.Len() != 4 {
		t.Fatalf("Len=%d want 4", idx.Len())
	}
	// reading an absent point must not create it
	if idx.Len() != len(idx.Points()) {
		t.Fatalf("Points length mismatch")
	}
}

func TestBuildIndex_Deterministic(t *testing.T) {
	ds := decode(t, twoStations)
	a := BuildIndex(ds.Antennas())
	b := BuildIndex(ds.Antennas())

	if a.Len() != b.Len() {
		t.Fatalf("len differs: %d vs %d", a.Len(), b.Len())
	}
	for _, p := range a.Points() {
		if a.Count(p) != b.Count(p) {
			t.Fatalf("count for %s differs: %d vs %d", p, a.Count(p), b.Count(p))
		}
	}
	if a.Summarize() != b.Summarize() {
		t.Fatalf("summaries differ")
	}
}

func TestBuildIndex_StationScope(t *testing.T) {
	ds := decode(t, twoStations)
	idx := BuildIndex(ds.BaseStations[1].Antennas)

	s := idx.Summarize()
	want := IndexSummary{ExactlyOne: 2, MoreThanOne: 0, MaxPerPoint: 1, SumOfCounts: 2, IndexedCells: 2}
	if s != want {
		t.Fatalf("summary=%+v want %+v", s, want)
	}
}

func TestBuildIndex_Empty(t *testing.T) {
	idx := BuildIndex(nil)
	if idx.Len() != 0 {
		t.Fatalf("expected empty index")
	}
	if s := idx.Summarize(); s != (IndexSummary{}) {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}
