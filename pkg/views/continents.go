package views

import (
	"github.com/owidviz/covidscope/pkg/aggregate"
	"github.com/owidviz/covidscope/pkg/observation"
)

type Tile struct {
	Name  string  `json:"name"`
	Cases float64 `json:"cases"`
	Share float64 `json:"share"`
}

// Treemap is the continent breakdown of new cases under a World root.
type Treemap struct {
	Root  string  `json:"root"`
	Total float64 `json:"total"`
	Tiles []Tile  `json:"tiles"`
}

// Continents sums new cases per continent row, largest first.
func Continents(obs []observation.Observation) Treemap {
	wanted := make(map[string]bool, len(observation.Continents))
	for _, c := range observation.Continents {
		wanted[c] = true
	}
	var rows []observation.Observation
	for _, o := range obs {
		if wanted[o.Entity] {
			rows = append(rows, o)
		}
	}

	byContinent := aggregate.ByEntity(rows, observation.NewCases)
	tm := Treemap{Root: observation.World}
	for _, v := range byContinent.Values() {
		tm.Total += v
	}
	for _, e := range aggregate.Descending(byContinent) {
		t := Tile{Name: e.Key, Cases: e.Value}
		if tm.Total > 0 {
			t.Share = e.Value / tm.Total
		}
		tm.Tiles = append(tm.Tiles, t)
	}
	return tm
}
