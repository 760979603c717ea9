package views

import (
	"github.com/owidviz/covidscope/pkg/aggregate"
	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/scale"
	"github.com/owidviz/covidscope/pkg/selection"
	"github.com/owidviz/covidscope/pkg/timebucket"
	"github.com/owidviz/covidscope/pkg/window"
)

// Groups are the two country lists compared side by side.
type Groups struct {
	High []string `json:"high" yaml:"high"`
	Low  []string `json:"low" yaml:"low"`
}

var DefaultGroups = Groups{
	High: []string{"Qatar", "Iceland", "Norway", "Switzerland", "Singapore"},
	Low:  []string{"Bangladesh", "India", "Zimbabwe", "Nigeria", "Haiti"},
}

type ComparisonBar struct {
	Country string  `json:"country"`
	Group   string  `json:"group"`
	Value   float64 `json:"value"`
	Width   float64 `json:"width"`
}

// Comparison sums new cases per million for every listed country. The
// domain always covers the whole window so brushed bars stay comparable.
type Comparison struct {
	From     *timebucket.Month `json:"from,omitempty"`
	To       *timebucket.Month `json:"to,omitempty"`
	Domain   scale.Linear      `json:"domain"`
	Bars     []ComparisonBar   `json:"bars"`
	Overview BarChart          `json:"overview"`
}

// Compare builds the comparison for the snapshot's brushed range, or the
// whole window when nothing is brushed.
func Compare(snap selection.Snapshot, groups Groups) Comparison {
	group := make(map[string]string)
	var order []string
	for _, c := range groups.High {
		group[c] = "high"
		order = append(order, c)
	}
	for _, c := range groups.Low {
		if _, dup := group[c]; !dup {
			group[c] = "low"
			order = append(order, c)
		}
	}

	var rows []observation.Observation
	for _, o := range snap.Observations {
		if _, ok := group[o.Entity]; ok {
			rows = append(rows, o)
		}
	}
	full := aggregate.ByEntity(rows, observation.NewCasesPerMillion)

	cmp := Comparison{Domain: scale.LinearOf(full, identity)}
	totals := full
	from, to, brushed := snap.State.Range()
	if brushed {
		cmp.From, cmp.To = &from, &to
		totals = aggregate.ByEntity(window.Between(rows, from, to), observation.NewCasesPerMillion)
	}
	for _, c := range order {
		v, ok := totals.Get(c)
		if !ok {
			continue
		}
		cmp.Bars = append(cmp.Bars, ComparisonBar{
			Country: c,
			Group:   group[c],
			Value:   v,
			Width:   cmp.Domain.Map(v),
		})
	}

	ov := snap.Overview
	cmp.Overview = BarChart{
		Name:   "overview",
		Title:  "New Cases per Million per Month",
		Status: snap.CasesStatus,
		Domain: ov.Cases,
		Ticks:  ov.Cases.Ticks(tickCount),
	}
	for _, m := range ov.Months.Keys() {
		t, _ := ov.Aggregate.Get(m)
		cmp.Overview.Bars = append(cmp.Overview.Bars, Bar{
			Month:       m,
			Label:       m.Label(),
			Value:       t.Cases,
			Height:      ov.Cases.Map(t.Cases),
			Highlighted: brushed && !m.Before(from) && !m.After(to),
		})
	}
	return cmp
}
