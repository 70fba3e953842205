// Package coverage computes coverage statistics and point-coverage answers
// over a loaded dataset of base stations and antennas.
package coverage

import (
	"errors"
	"fmt"
	"math"

	"github.com/mohammed-shakir/coverage-stats/internal/core/model"
)

// ErrInvalidGeometry marks a bounding box or step that yields no usable grid.
var ErrInvalidGeometry = errors.New("invalid grid geometry")

// Geometry describes the addressable grid of a bounding box.
type Geometry struct {
	LatSteps    int `json:"lat_steps"`
	LonSteps    int `json:"lon_steps"`
	TotalPoints int `json:"total_points"`
}

// ComputeGrid counts grid cells per axis, boundaries inclusive. Step counts
// are rounded half to even before adding the closing cell.
func ComputeGrid(bb model.BBox, step float64) (Geometry, error) {
	if err := validateGrid(bb, step); err != nil {
		return Geometry{}, err
	}
	lat, err := axisSteps("lat", bb.MinLat, bb.MaxLat, step)
	if err != nil {
		return Geometry{}, err
	}
	lon, err := axisSteps("lon", bb.MinLon, bb.MaxLon, step)
	if err != nil {
		return Geometry{}, err
	}
	if lat > math.MaxInt/lon {
		return Geometry{}, fmt.Errorf("%w: %d x %d grid points overflow", ErrInvalidGeometry, lat, lon)
	}
	return Geometry{LatSteps: lat, LonSteps: lon, TotalPoints: lat * lon}, nil
}

func axisSteps(axis string, lo, hi, step float64) (int, error) {
	n := math.RoundToEven((hi-lo)/step) + 1
	// float64(math.MaxInt) rounds up to 2^63, so >= keeps the conversion in range
	if math.IsNaN(n) || math.IsInf(n, 0) || n >= float64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %s span %v / step %v has too many grid points", ErrInvalidGeometry, axis, hi-lo, step)
	}
	return int(n), nil
}

func validateGrid(bb model.BBox, step float64) error {
	for _, v := range []float64{bb.MinLat, bb.MaxLat, bb.MinLon, bb.MaxLon, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value in bounds %s step %v", ErrInvalidGeometry, bb, step)
		}
	}
	if step <= 0 {
		return fmt.Errorf("%w: step %v must be > 0", ErrInvalidGeometry, step)
	}
	if bb.MaxLat < bb.MinLat {
		return fmt.Errorf("%w: max_lat %v < min_lat %v", ErrInvalidGeometry, bb.MaxLat, bb.MinLat)
	}
	if bb.MaxLon < bb.MinLon {
		return fmt.Errorf("%w: max_lon %v < min_lon %v", ErrInvalidGeometry, bb.MaxLon, bb.MinLon)
	}
	return nil
}
