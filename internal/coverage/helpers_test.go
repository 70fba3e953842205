package coverage

import (
	"encoding/json"
	"testing"

	"github.com/mohammed-shakir/coverage-stats/internal/core/model"
)

func decode(t *testing.T, doc string) *model.Dataset {
	t.Helper()
	var ds model.Dataset
	if err := json.Unmarshal([]byte(doc), &ds); err != nil {
		t.Fatalf("decode dataset: %v", err)
	}
	return &ds
}

// two stations on a 2x2 grid; antenna 1/a1 repeats one point three times
const twoStations = `{
	"min_lat": 0, "max_lat": 1, "min_lon": 0, "max_lon": 1, "step": 1,
	"baseStations": [
		{"id": 1, "ants": [
			{"id": "a1", "pts": [[0,0,1],[0,0,1],[0,0,1]]},
			{"id": "a2", "pts": [[0,1,1],[1,0,1]]}
		]},
		{"id": 2, "ants": [
			{"id": "b1", "pts": [[1,1,1],[0,1,2]]}
		]}
	]
}`

type fixedPicker int

func (f fixedPicker) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}
