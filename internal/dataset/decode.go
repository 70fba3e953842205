package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mohammed-shakir/coverage-stats/internal/core/model"
)

// wire mirrors model.Dataset with pointers so missing keys can be told
// apart from zero values.
type wireDataset struct {
	MinLat       *float64       `json:"min_lat"`
	MaxLat       *float64       `json:"max_lat"`
	MinLon       *float64       `json:"min_lon"`
	MaxLon       *float64       `json:"max_lon"`
	Step         *float64       `json:"step"`
	BaseStations *[]wireStation `json:"baseStations"`
}

type wireStation struct {
	ID   *model.ID      `json:"id"`
	Ants *[]wireAntenna `json:"ants"`
}

type wireAntenna struct {
	ID  *model.ID              `json:"id"`
	Pts *[]model.CoveragePoint `json:"pts"`
}

// Decode parses a dataset document and rejects structurally incomplete ones.
// Geometry is not checked here.
func Decode(raw []byte) (*model.Dataset, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty document")
	}
	var w wireDataset
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	required := []struct {
		name string
		v    *float64
	}{
		{"min_lat", w.MinLat},
		{"max_lat", w.MaxLat},
		{"min_lon", w.MinLon},
		{"max_lon", w.MaxLon},
		{"step", w.Step},
	}
	for _, r := range required {
		if r.v == nil {
			return nil, fmt.Errorf("missing %q", r.name)
		}
	}
	if w.BaseStations == nil {
		return nil, errors.New(`missing "baseStations"`)
	}

	ds := &model.Dataset{
		MinLat:       *w.MinLat,
		MaxLat:       *w.MaxLat,
		MinLon:       *w.MinLon,
		MaxLon:       *w.MaxLon,
		Step:         *w.Step,
		BaseStations: make([]model.BaseStation, 0, len(*w.BaseStations)),
	}
	for i, ws := range *w.BaseStations {
		if ws.ID == nil {
			return nil, fmt.Errorf("baseStations[%d]: missing \"id\"", i)
		}
		if ws.Ants == nil {
			return nil, fmt.Errorf("baseStations[%d]: missing \"ants\"", i)
		}
		bs := model.BaseStation{ID: *ws.ID, Antennas: make([]model.Antenna, 0, len(*ws.Ants))}
		for j, wa := range *ws.Ants {
			if wa.ID == nil {
				return nil, fmt.Errorf("baseStations[%d].ants[%d]: missing \"id\"", i, j)
			}
			if wa.Pts == nil {
				return nil, fmt.Errorf("baseStations[%d].ants[%d]: missing \"pts\"", i, j)
			}
			bs.Antennas = append(bs.Antennas, model.Antenna{ID: *wa.ID, Points: *wa.Pts})
		}
		ds.BaseStations = append(ds.BaseStations, bs)
	}
	return ds, nil
}
