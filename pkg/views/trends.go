package views

import (
	"time"

	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/scale"
	"github.com/owidviz/covidscope/pkg/window"
)

var DefaultTrendCountries = []string{"China", "India", "United States", "United Kingdom", "Brazil"}

type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type TrendSeries struct {
	Country string       `json:"country"`
	Points  []TrendPoint `json:"points"`
}

// TrendChart plots smoothed daily cases per country on a shared y domain.
// Axis is the x domain and may extend past the data.
type TrendChart struct {
	Axis   window.Window `json:"-"`
	From   time.Time     `json:"from"`
	To     time.Time     `json:"to"`
	Domain scale.Linear  `json:"domain"`
	Series []TrendSeries `json:"series"`
}

func Trends(obs []observation.Observation, countries []string, axis window.Window) TrendChart {
	index := make(map[string]int, len(countries))
	chart := TrendChart{Axis: axis, From: axis.Start, To: axis.End}
	for _, c := range countries {
		if _, dup := index[c]; dup {
			continue
		}
		index[c] = len(chart.Series)
		chart.Series = append(chart.Series, TrendSeries{Country: c})
	}

	var values []float64
	for _, o := range obs {
		i, ok := index[o.Entity]
		if !ok || !axis.Contains(o.Date) {
			continue
		}
		v := observation.NewCasesSmoothed.Value(o)
		chart.Series[i].Points = append(chart.Series[i].Points, TrendPoint{Date: o.Date, Value: v})
		values = append(values, v)
	}
	chart.Domain = scale.LinearDomain(values)
	return chart
}
