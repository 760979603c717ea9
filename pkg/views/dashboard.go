package views

import (
	"github.com/owidviz/covidscope/pkg/aggregate"
	"github.com/owidviz/covidscope/pkg/scale"
	"github.com/owidviz/covidscope/pkg/selection"
	"github.com/owidviz/covidscope/pkg/timebucket"
)

// Bar is one month of a monthly bar chart. Height is the value mapped onto
// the chart's domain, in [0, 1].
type Bar struct {
	Month       timebucket.Month `json:"month"`
	Label       string           `json:"label"`
	Value       float64          `json:"value"`
	Height      float64          `json:"height"`
	Highlighted bool             `json:"highlighted"`
}

type BarChart struct {
	Name   string           `json:"name"`
	Title  string           `json:"title"`
	Status selection.Status `json:"status"`
	Domain scale.Linear     `json:"domain"`
	Ticks  []float64        `json:"ticks"`
	Bars   []Bar            `json:"bars"`
}

type MapView struct {
	Month       timebucket.Month    `json:"month"`
	Label       string              `json:"label"`
	SliderIndex int                 `json:"slider_index"`
	SliderMax   int                 `json:"slider_max"`
	Legend      []scale.LegendEntry `json:"legend"`
}

// Dashboard is everything the linked views draw for one snapshot.
type Dashboard struct {
	Entity       string          `json:"entity"`
	Version      uint64          `json:"version"`
	Focus        selection.Focus `json:"focus"`
	Cases        BarChart        `json:"cases"`
	Deaths       BarChart        `json:"deaths"`
	Vaccinations BarChart        `json:"vaccinations"`
	Boosters     BarChart        `json:"boosters"`
	Map          MapView         `json:"map"`
	Errors       []string        `json:"errors,omitempty"`
}

const tickCount = 6

// Render is a pure function of the snapshot.
func Render(snap selection.Snapshot) Dashboard {
	entity := snap.State.Selector.Entity
	primary := snap.Primary
	vacc := snap.Vaccination

	d := Dashboard{
		Entity:  entity,
		Version: snap.State.Version,
		Focus:   snap.State.Focus,
		Cases: monthlyChart(selection.ChartCases, "New Cases per Month: "+entity, snap.CasesStatus,
			primary.Aggregate, primary.Months, primary.Cases, func(t aggregate.Totals) float64 { return t.Cases }, snap),
		Deaths: monthlyChart(selection.ChartDeaths, "New Deaths per Month: "+entity, snap.CasesStatus,
			primary.Aggregate, primary.Months, primary.Deaths, func(t aggregate.Totals) float64 { return t.Deaths }, snap),
		Vaccinations: monthlyChart(selection.ChartVaccinations, "New Vaccinations per Month: "+entity, vacc.Status,
			vacc.Vaccinations.Aggregate, vacc.Vaccinations.Months, vacc.Vaccinations.Domain, identity, snap),
		Boosters: monthlyChart(selection.ChartBoosters, "Total Boosters per Month: "+entity, vacc.Status,
			vacc.Boosters.Aggregate, vacc.Boosters.Months, vacc.Boosters.Domain, identity, snap),
	}

	month := snap.MapMonth()
	index, _ := snap.Slider.Index(month)
	d.Map = MapView{
		Month:       month,
		Label:       month.Label(),
		SliderIndex: index,
		SliderMax:   snap.Slider.Max(),
		Legend:      scale.CaseColors.Legend(),
	}

	if snap.CasesErr != "" {
		d.Errors = append(d.Errors, "cases: "+snap.CasesErr)
	}
	if vacc.Err != "" {
		d.Errors = append(d.Errors, "vaccinations: "+vacc.Err)
	}
	return d
}

func identity(v float64) float64 { return v }

func monthlyChart[V any](name, title string, status selection.Status, agg *aggregate.Ordered[timebucket.Month, V], months scale.Band[timebucket.Month], domain scale.Linear, value func(V) float64, snap selection.Snapshot) BarChart {
	c := BarChart{
		Name:   name,
		Title:  title,
		Status: status,
		Domain: domain,
		Ticks:  domain.Ticks(tickCount),
		Bars:   make([]Bar, 0, months.Len()),
	}
	for _, m := range months.Keys() {
		v, _ := agg.Get(m)
		c.Bars = append(c.Bars, Bar{
			Month:       m,
			Label:       m.Label(),
			Value:       value(v),
			Height:      domain.Map(value(v)),
			Highlighted: snap.Highlighted(name, m),
		})
	}
	return c
}
