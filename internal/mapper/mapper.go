// Package mapper converts query coordinates to hierarchical cell ids.
package mapper

type Interface interface {
	CellForPoint(lat, lon float64, res int) (string, error)
	// Center returns the centroid of a cell id produced by CellForPoint.
	Center(cell string) (lat, lon float64, err error)
}
