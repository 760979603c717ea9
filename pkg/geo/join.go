package geo

import (
	"encoding/json"

	"github.com/owidviz/covidscope/pkg/aggregate"
	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/scale"
	"github.com/owidviz/covidscope/pkg/timebucket"
)

// Value is a looked-up number; OK is false when there was no data.
type Value struct {
	V  float64
	OK bool
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.OK {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// Cell is what the map shows for one country in one month.
type Cell struct {
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	Month        timebucket.Month `json:"month"`
	Cases        Value            `json:"cases"`
	Deaths       Value            `json:"deaths"`
	Vaccinations Value            `json:"vaccinations"`
	Fill         string           `json:"fill"`
}

// Join resolves (code, month) against the nested aggregates.
type Join struct {
	Cases        *aggregate.Ordered[string, *aggregate.Ordered[timebucket.Month, aggregate.Totals]]
	Vaccinations *aggregate.Ordered[string, *aggregate.Ordered[timebucket.Month, float64]]
}

// NewJoin aggregates both datasets by code and month. vaccinations may be
// nil while that dataset is still loading.
func NewJoin(cases, vaccinations []observation.Observation, metric observation.Metric) Join {
	j := Join{Cases: aggregate.ByCodeMonth(cases, metric)}
	if vaccinations != nil {
		j.Vaccinations = aggregate.ByCodeMonthVaccinations(vaccinations)
	}
	return j
}

// WithCases returns a copy of j with the case side rebuilt.
func (j Join) WithCases(obs []observation.Observation, metric observation.Metric) Join {
	j.Cases = aggregate.ByCodeMonth(obs, metric)
	return j
}

// WithVaccinations returns a copy of j with the vaccination side rebuilt.
func (j Join) WithVaccinations(obs []observation.Observation) Join {
	j.Vaccinations = aggregate.ByCodeMonthVaccinations(obs)
	return j
}

// Lookup never fails: an unknown code or a month without rows yields a
// cell with no values.
func (j Join) Lookup(code string, m timebucket.Month) Cell {
	c := Cell{Code: code, Month: m}
	if t, ok := aggregate.Lookup2(j.Cases, code, m); ok {
		c.Cases = Value{V: t.Cases, OK: true}
		c.Deaths = Value{V: t.Deaths, OK: true}
	}
	if v, ok := aggregate.Lookup2(j.Vaccinations, code, m); ok {
		c.Vaccinations = Value{V: v, OK: true}
	}
	return c
}

// Resolve computes the cell of every feature for month m, colored by cases.
func (j Join) Resolve(b *Boundaries, m timebucket.Month, colors scale.Threshold) []Cell {
	cells := make([]Cell, 0, b.Len())
	for _, f := range b.features {
		c := j.Lookup(f.ID, m)
		c.Name = f.Name
		c.Fill = colors.Fill(c.Cases.V, c.Cases.OK)
		cells = append(cells, c)
	}
	return cells
}
