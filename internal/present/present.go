// Package present renders coverage results as the plain-text report shown
// by the interactive menu.
package present

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/coverage-stats/internal/coverage"
	"github.com/mohammed-shakir/coverage-stats/internal/service"
)

const (
	MsgStationNotFound = "Base station not found."
	MsgNoStations      = "No base stations found."
)

func GlobalStats(w io.Writer, st coverage.GlobalStats) error {
	bsID, antID := "None", "None"
	if top := st.TopCoveringStationAntenna; top != nil {
		bsID, antID = top.StationID.String(), top.AntennaID.String()
	}
	lines := []string{
		fmt.Sprintf("Total number of base stations = %d", st.TotalBaseStations),
		fmt.Sprintf("Total number of antennas = %d", st.TotalAntennas),
		fmt.Sprintf("Max, min, and average of antennas per base station = %d, %d, %.2f",
			st.MaxAntsPerStation, st.MinAntsPerStation, st.AvgAntsPerStation),
	}
	lines = append(lines, pointLines(st.PointStats)...)
	lines = append(lines, fmt.Sprintf(
		"ID of the base station and antenna covering the maximum number of points = %s, %s", bsID, antID))
	return writeLines(w, lines)
}

func StationStats(w io.Writer, st coverage.StationStats) error {
	antID := "None"
	if top := st.TopCoveringAntenna; top != nil {
		antID = top.AntennaID.String()
	}
	lines := []string{fmt.Sprintf("Total number of antennas = %d", st.TotalAntennas)}
	lines = append(lines, pointLines(st.PointStats)...)
	lines = append(lines, fmt.Sprintf("ID of the antenna covering the maximum number of points = %s", antID))
	return writeLines(w, lines)
}

func PointCoverage(w io.Writer, ans service.PointAnswer) error {
	at := fmt.Sprintf("(%s, %s)", Coord(ans.Lat), Coord(ans.Lon))
	if ans.Covered() {
		parts := make([]string, 0, len(ans.Covering))
		for _, c := range ans.Covering {
			parts = append(parts, fmt.Sprintf("(%s, %s, %s)", c.StationID, c.AntennaID, c.Value))
		}
		return writeLines(w, []string{fmt.Sprintf("Antennas covering point %s: [%s]", at, strings.Join(parts, ", "))})
	}
	lines := []string{fmt.Sprintf("No coverage found at point %s", at)}
	if n := ans.Nearest; n != nil {
		lines = append(lines, fmt.Sprintf("Nearest antenna is from base station %s with antenna ID %s at (%s, %s)",
			n.StationID, n.AntennaID, Coord(n.Lat), Coord(n.Lon)))
	}
	return writeLines(w, lines)
}

func pointLines(ps coverage.PointStats) []string {
	return []string{
		fmt.Sprintf("Total number of points covered by exactly one antenna = %d", ps.ExactlyOneAntenna),
		fmt.Sprintf("Total number of points covered by more than one antenna = %d", ps.MoreThanOneAntenna),
		fmt.Sprintf("Total number of points not covered by any antenna = %d", ps.NoAntennaCoverage),
		fmt.Sprintf("Maximum number of antennas that cover one point = %d", ps.MaxAntennasOnePoint),
		fmt.Sprintf("Average number of antennas covering a point = %.2f", ps.AvgAntennasPerPoint),
		fmt.Sprintf("Percentage of the covered area = %.2f%%", ps.PercentageCoveredArea),
	}
}

// Coord formats a coordinate in shortest form, keeping a trailing ".0" on
// whole numbers.
func Coord(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !math.IsInf(v, 0) && !math.IsNaN(v) && !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func writeLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return err
		}
	}
	return nil
}
