package views

import (
	"math"

	"github.com/dustin/go-humanize"

	"github.com/owidviz/covidscope/pkg/geo"
	"github.com/owidviz/covidscope/pkg/selection"
	"github.com/owidviz/covidscope/pkg/timebucket"
)

// NA is shown when a lookup finds no data.
const NA = "N/A"

type Tooltip struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Count formats v with thousands separators, or N/A when ok is false.
func Count(v float64, ok bool) string {
	if !ok || math.IsNaN(v) {
		return NA
	}
	return humanize.Comma(int64(math.Round(v)))
}

func line(label string, v float64, ok bool) string {
	return label + ": " + Count(v, ok)
}

// MonthTooltip looks month up in the current aggregates when a bar is
// hovered. It reads the snapshot it is given rather than any earlier one.
func MonthTooltip(snap selection.Snapshot, month timebucket.Month) Tooltip {
	t, ok := snap.Primary.Aggregate.Get(month)
	v, vok := snap.Vaccination.Vaccinations.Aggregate.Get(month)
	return Tooltip{
		Title: month.Label(),
		Lines: []string{
			line("New Cases", t.Cases, ok),
			line("New Deaths", t.Deaths, ok),
			line("New Vaccinations", v, vok),
		},
	}
}

// BoosterTooltip is the tooltip of the booster chart.
func BoosterTooltip(snap selection.Snapshot, month timebucket.Month) Tooltip {
	v, ok := snap.Vaccination.Boosters.Aggregate.Get(month)
	return Tooltip{Title: month.Label(), Lines: []string{line("Total Boosters", v, ok)}}
}

// MapTooltip describes one country in the slider's month.
func MapTooltip(c geo.Cell) Tooltip {
	title := c.Name
	if title == "" {
		title = c.Code
	}
	return Tooltip{
		Title: title + ", " + c.Month.Label(),
		Lines: []string{
			line("New Cases", c.Cases.V, c.Cases.OK),
			line("New Deaths", c.Deaths.V, c.Deaths.OK),
			line("New Vaccinations", c.Vaccinations.V, c.Vaccinations.OK),
		},
	}
}

// CountryTooltip resolves code against the snapshot's map join for the
// month under the slider.
func CountryTooltip(snap selection.Snapshot, code, name string) Tooltip {
	c := snap.Join.Lookup(code, snap.MapMonth())
	c.Name = name
	return MapTooltip(c)
}
