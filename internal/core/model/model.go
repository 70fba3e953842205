// Package model defines core domain types shared across the service.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID identifies a base station or an antenna. It decodes from a JSON number
// or a JSON string. Integral numbers are canonicalised (7, 7.0 and 7e0 all
// become "7"); strings and other numbers keep their literal text. A string
// id "7" therefore also matches 7.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return errors.New("id must not be null")
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = canonicalNumber(n.String())
	return nil
}

// maxExactInt is the largest magnitude below which every integral float64
// prints back as the same integer.
const maxExactInt = 1 << 53

func canonicalNumber(lit string) ID {
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return ID(strconv.FormatInt(i, 10))
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err == nil && f == math.Trunc(f) && math.Abs(f) < maxExactInt {
		return ID(strconv.FormatInt(int64(f), 10))
	}
	return ID(lit)
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Value is the opaque payload attached to a coverage point.
type Value json.RawMessage

func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	*v = append((*v)[0:0], b...)
	return nil
}

func (v Value) String() string {
	if len(v) == 0 {
		return "None"
	}
	return string(v)
}

// CoveragePoint is encoded as a [lat, lon, value] triple.
type CoveragePoint struct {
	Lat   float64
	Lon   float64
	Value Value
}

func (p CoveragePoint) GridPoint() GridPoint {
	return GridPoint{Lat: p.Lat, Lon: p.Lon}
}

func (p *CoveragePoint) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("coverage point must be an array: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("coverage point must have 3 elements, got %d", len(raw))
	}
	var lat, lon float64
	if err := json.Unmarshal(raw[0], &lat); err != nil {
		return fmt.Errorf("latitude: %w", err)
	}
	if err := json.Unmarshal(raw[1], &lon); err != nil {
		return fmt.Errorf("longitude: %w", err)
	}
	p.Lat, p.Lon = lat, lon
	p.Value = Value(bytes.TrimSpace(raw[2]))
	return nil
}

func (p CoveragePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Lat, p.Lon, p.Value})
}

type Antenna struct {
	ID     ID              `json:"id"`
	Points []CoveragePoint `json:"pts"`
}

type BaseStation struct {
	ID       ID        `json:"id"`
	Antennas []Antenna `json:"ants"`
}

// Dataset is read-only once loaded.
type Dataset struct {
	MinLat       float64       `json:"min_lat"`
	MaxLat       float64       `json:"max_lat"`
	MinLon       float64       `json:"min_lon"`
	MaxLon       float64       `json:"max_lon"`
	Step         float64       `json:"step"`
	BaseStations []BaseStation `json:"baseStations"`
}

func (d *Dataset) Bounds() BBox {
	return BBox{MinLat: d.MinLat, MaxLat: d.MaxLat, MinLon: d.MinLon, MaxLon: d.MaxLon}
}

// Antennas returns every antenna of every station in station order.
func (d *Dataset) Antennas() []Antenna {
	n := 0
	for _, bs := range d.BaseStations {
		n += len(bs.Antennas)
	}
	out := make([]Antenna, 0, n)
	for _, bs := range d.BaseStations {
		out = append(out, bs.Antennas...)
	}
	return out
}

func (d *Dataset) PointCount() int {
	n := 0
	for _, bs := range d.BaseStations {
		for _, ant := range bs.Antennas {
			n += len(ant.Points)
		}
	}
	return n
}

// GridPoint is a grid cell key. Coordinates match only on exact equality.
type GridPoint struct {
	Lat, Lon float64
}

func (g GridPoint) String() string {
	return "(" + strconv.FormatFloat(g.Lat, 'g', -1, 64) + ", " + strconv.FormatFloat(g.Lon, 'g', -1, 64) + ")"
}

type BBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
}

// ParseID turns user input into an ID. Integers are canonicalised so "07"
// finds station 7 (and 7.0); anything else is kept verbatim after trimming.
func ParseID(s string) ID {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID(strconv.FormatInt(n, 10))
	}
	return ID(s)
}
