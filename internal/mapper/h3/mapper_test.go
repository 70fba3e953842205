package h3mapper

import (
	"math"
	"testing"

	h3 "github.com/uber/h3-go/v4"
)

func TestCellForPoint_MatchesLibraryAndResolution(t *testing.T) {
	m := New()
	cell, err := m.CellForPoint(59.3293, 18.0686, 8)
	if err != nil {
		t.Fatalf("CellForPoint: %v", err)
	}
	want, err := h3.LatLngToCell(h3.LatLng{Lat: 59.3293, Lng: 18.0686}, 8)
	if err != nil {
		t.Fatalf("LatLngToCell: %v", err)
	}
	if cell != want.String() {
		t.Fatalf("cell=%s want %s", cell, want)
	}
	if want.Resolution() != 8 {
		t.Fatalf("resolution=%d want 8", want.Resolution())
	}
}

func TestCellForPoint_Deterministic(t *testing.T) {
	m := New()
	a, _ := m.CellForPoint(55.6050, 13.0038, 7)
	b, _ := m.CellForPoint(55.6050, 13.0038, 7)
	if a == "" || a != b {
		t.Fatalf("expected identical non-empty cells, got %q and %q", a, b)
	}
}

func TestCellForPoint_Bounds(t *testing.T) {
	m := New()
	if _, err := m.CellForPoint(0, 0, -1); err == nil {
		t.Fatalf("expected error for res=-1")
	}
	if _, err := m.CellForPoint(0, 0, 16); err == nil {
		t.Fatalf("expected error for res=16")
	}
	if _, err := m.CellForPoint(91, 0, 5); err == nil {
		t.Fatalf("expected error for lat=91")
	}
	if _, err := m.CellForPoint(math.NaN(), 0, 5); err == nil {
		t.Fatalf("expected error for NaN")
	}
}

func TestCenter_RoundTripsNearInput(t *testing.T) {
	m := New()
	cell, err := m.CellForPoint(57.7089, 11.9746, 9)
	if err != nil {
		t.Fatalf("CellForPoint: %v", err)
	}
	lat, lon, err := m.Center(cell)
	if err != nil {
		t.Fatalf("Center: %v", err)
	}
	// res 9 cells are well under 1km across
	if math.Abs(lat-57.7089) > 0.01 || math.Abs(lon-11.9746) > 0.01 {
		t.Fatalf("center (%v,%v) too far from input", lat, lon)
	}
	if _, _, err := m.Center("not-a-cell"); err == nil {
		t.Fatalf("expected error for garbage cell")
	}
}
