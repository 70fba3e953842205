package coverage

import (
	"math/rand/v2"

	"github.com/mohammed-shakir/coverage-stats/internal/core/model"
)

// PointStats are the per-grid-point figures shared by the global and the
// per-station reports.
type PointStats struct {
	ExactlyOneAntenna     int     `json:"exactly_one_antenna"`
	MoreThanOneAntenna    int     `json:"more_than_one_antenna"`
	NoAntennaCoverage     int     `json:"no_antenna_coverage"`
	MaxAntennasOnePoint   int     `json:"max_antennas_one_point"`
	AvgAntennasPerPoint   float64 `json:"avg_antennas_per_point"`
	PercentageCoveredArea float64 `json:"percentage_covered_area"`
}

type StationAntenna struct {
	StationID model.ID `json:"station_id"`
	AntennaID model.ID `json:"antenna_id"`
	Points    int      `json:"points"`
}

type AntennaRef struct {
	AntennaID model.ID `json:"antenna_id"`
	Points    int      `json:"points"`
}

type GlobalStats struct {
	TotalBaseStations int      `json:"total_base_stations"`
	TotalAntennas     int      `json:"total_antennas"`
	MaxAntsPerStation int      `json:"max_ants_per_station"`
	MinAntsPerStation int      `json:"min_ants_per_station"`
	AvgAntsPerStation float64  `json:"avg_ants_per_station"`
	Grid              Geometry `json:"grid"`
	PointStats
	// nil when the dataset has no antennas
	TopCoveringStationAntenna *StationAntenna `json:"top_covering_station_antenna"`
}

type StationStats struct {
	StationID     model.ID `json:"station_id"`
	TotalAntennas int      `json:"total_antennas"`
	Grid          Geometry `json:"grid"`
	PointStats
	TopCoveringAntenna *AntennaRef `json:"top_covering_antenna"`
}

// Picker chooses an index in [0, n). *rand.Rand from math/rand/v2 satisfies
// it; a nil Picker falls back to the package-level generator.
type Picker interface {
	IntN(n int) int
}

// GlobalStatistics reports over every antenna of every station. It fails only
// when the dataset geometry is invalid.
func GlobalStatistics(ds *model.Dataset) (GlobalStats, error) {
	geo, err := ComputeGrid(ds.Bounds(), ds.Step)
	if err != nil {
		return GlobalStats{}, err
	}

	out := GlobalStats{
		TotalBaseStations: len(ds.BaseStations),
		Grid:              geo,
	}
	for i, bs := range ds.BaseStations {
		n := len(bs.Antennas)
		out.TotalAntennas += n
		if i == 0 || n > out.MaxAntsPerStation {
			out.MaxAntsPerStation = n
		}
		if i == 0 || n < out.MinAntsPerStation {
			out.MinAntsPerStation = n
		}
	}
	if out.TotalBaseStations > 0 {
		out.AvgAntsPerStation = float64(out.TotalAntennas) / float64(out.TotalBaseStations)
	}

	out.PointStats = pointStats(BuildIndex(ds.Antennas()), geo)

	for _, bs := range ds.BaseStations {
		for _, ant := range bs.Antennas {
			top := out.TopCoveringStationAntenna
			if top == nil || len(ant.Points) > top.Points {
				out.TopCoveringStationAntenna = &StationAntenna{
					StationID: bs.ID,
					AntennaID: ant.ID,
					Points:    len(ant.Points),
				}
			}
		}
	}
	return out, nil
}

// StationStatistics reports on the station with the given id, or on one
// picked at random when id is nil. found is false when no station matches.
func StationStatistics(ds *model.Dataset, id *model.ID, rnd Picker) (stats StationStats, found bool, err error) {
	bs, ok := selectStation(ds, id, rnd)
	if !ok {
		return StationStats{}, false, nil
	}
	geo, err := ComputeGrid(ds.Bounds(), ds.Step)
	if err != nil {
		return StationStats{}, true, err
	}

	out := StationStats{
		StationID:     bs.ID,
		TotalAntennas: len(bs.Antennas),
		Grid:          geo,
		PointStats:    pointStats(BuildIndex(bs.Antennas), geo),
	}
	for _, ant := range bs.Antennas {
		if out.TopCoveringAntenna == nil || len(ant.Points) > out.TopCoveringAntenna.Points {
			out.TopCoveringAntenna = &AntennaRef{AntennaID: ant.ID, Points: len(ant.Points)}
		}
	}
	return out, true, nil
}

func selectStation(ds *model.Dataset, id *model.ID, rnd Picker) (*model.BaseStation, bool) {
	if len(ds.BaseStations) == 0 {
		return nil, false
	}
	if id == nil {
		if rnd == nil {
			return &ds.BaseStations[rand.IntN(len(ds.BaseStations))], true
		}
		return &ds.BaseStations[rnd.IntN(len(ds.BaseStations))], true
	}
	for i := range ds.BaseStations {
		if ds.BaseStations[i].ID == *id {
			return &ds.BaseStations[i], true
		}
	}
	return nil, false
}

func pointStats(idx *Index, geo Geometry) PointStats {
	s := idx.Summarize()
	ps := PointStats{
		ExactlyOneAntenna:   s.ExactlyOne,
		MoreThanOneAntenna:  s.MoreThanOne,
		NoAntennaCoverage:   geo.TotalPoints - s.IndexedCells,
		MaxAntennasOnePoint: s.MaxPerPoint,
	}
	if s.IndexedCells > 0 {
		ps.AvgAntennasPerPoint = float64(s.SumOfCounts) / float64(s.IndexedCells)
	}
	ps.PercentageCoveredArea = float64(s.IndexedCells) / float64(geo.TotalPoints) * 100
	return ps
}
