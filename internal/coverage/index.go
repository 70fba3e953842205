package coverage

import "github.com/mohammed-shakir/coverage-stats/internal/core/model"

// Index maps grid points to the number of point entries covering them.
type Index struct {
	counts map[model.GridPoint]int
}

// BuildIndex counts every point entry of every antenna. Repeated points
// within one antenna are counted again.
func BuildIndex(antennas []model.Antenna) *Index {
	idx := &Index{counts: make(map[model.GridPoint]int)}
	for _, ant := range antennas {
		for _, pt := range ant.Points {
			idx.counts[pt.GridPoint()]++
		}
	}
	return idx
}

// Count returns 0 for points no antenna touches.
func (i *Index) Count(p model.GridPoint) int {
	return i.counts[p]
}

// Len is the number of distinct covered grid points.
func (i *Index) Len() int { return len(i.counts) }

// Points returns the indexed points in no particular order.
func (i *Index) Points() []model.GridPoint {
	out := make([]model.GridPoint, 0, len(i.counts))
	for p := range i.counts {
		out = append(out, p)
	}
	return out
}

// IndexSummary buckets indexed points by how many entries cover them.
type IndexSummary struct {
	ExactlyOne   int
	MoreThanOne  int
	MaxPerPoint  int
	SumOfCounts  int
	IndexedCells int
}

// Summarize walks the index once.
func (i *Index) Summarize() IndexSummary {
	s := IndexSummary{IndexedCells: len(i.counts)}
	for _, c := range i.counts {
		switch {
		case c == 1:
			s.ExactlyOne++
		case c > 1:
			s.MoreThanOne++
		}
		if c > s.MaxPerPoint {
			s.MaxPerPoint = c
		}
		s.SumOfCounts += c
	}
	return s
}
