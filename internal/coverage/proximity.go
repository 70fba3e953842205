package coverage

import (
	"math"

	"github.com/mohammed-shakir/coverage-stats/internal/core/model"
)

type Coverer struct {
	StationID model.ID    `json:"station_id"`
	AntennaID model.ID    `json:"antenna_id"`
	Value     model.Value `json:"value"`
}

type NearestPoint struct {
	StationID model.ID `json:"station_id"`
	AntennaID model.ID `json:"antenna_id"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Distance  float64  `json:"distance"`
}

type PointCoverage struct {
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	Covering []Coverer `json:"covering"`
	// set only when Covering is empty and the dataset has any point
	Nearest *NearestPoint `json:"nearest,omitempty"`
}

func (p PointCoverage) Covered() bool { return len(p.Covering) > 0 }

// QueryPoint lists every antenna point sitting exactly on (lat, lon). When
// there is none it falls back to the closest point in plain Euclidean
// degrees, the first one scanned winning ties.
func QueryPoint(ds *model.Dataset, lat, lon float64) PointCoverage {
	out := PointCoverage{Lat: lat, Lon: lon, Covering: []Coverer{}}
	for _, bs := range ds.BaseStations {
		for _, ant := range bs.Antennas {
			for _, pt := range ant.Points {
				if pt.Lat == lat && pt.Lon == lon {
					out.Covering = append(out.Covering, Coverer{StationID: bs.ID, AntennaID: ant.ID, Value: pt.Value})
				}
			}
		}
	}
	if len(out.Covering) == 0 {
		out.Nearest = nearest(ds, lat, lon)
	}
	return out
}

func nearest(ds *model.Dataset, lat, lon float64) *NearestPoint {
	var best *NearestPoint
	for _, bs := range ds.BaseStations {
		for _, ant := range bs.Antennas {
			for _, pt := range ant.Points {
				// Hypot may still be +Inf near the float64 limits; the first point is taken regardless
				d := math.Hypot(pt.Lat-lat, pt.Lon-lon)
				if best == nil || d < best.Distance {
					best = &NearestPoint{StationID: bs.ID, AntennaID: ant.ID, Lat: pt.Lat, Lon: pt.Lon, Distance: d}
				}
			}
		}
	}
	return best
}
