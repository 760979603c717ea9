package selection

import (
	"github.com/owidviz/covidscope/pkg/aggregate"
	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/scale"
	"github.com/owidviz/covidscope/pkg/timebucket"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// MonthlySeries is a monthly cases/deaths aggregate together with the
// domains derived from it. They are only ever built together.
type MonthlySeries struct {
	Aggregate *aggregate.Ordered[timebucket.Month, aggregate.Totals]
	Months    scale.Band[timebucket.Month]
	Cases     scale.Linear
	Deaths    scale.Linear
}

func NewMonthlySeries(obs []observation.Observation, metric observation.Metric) MonthlySeries {
	agg := aggregate.Monthly(obs, metric)
	return MonthlySeries{
		Aggregate: agg,
		Months:    scale.MonthBand(agg),
		Cases:     scale.LinearOf(agg, func(t aggregate.Totals) float64 { return t.Cases }),
		Deaths:    scale.LinearOf(agg, func(t aggregate.Totals) float64 { return t.Deaths }),
	}
}

// Series is a single-valued monthly aggregate and its domains.
type Series struct {
	Aggregate *aggregate.Ordered[timebucket.Month, float64]
	Months    scale.Band[timebucket.Month]
	Domain    scale.Linear
}

func newSeries(agg *aggregate.Ordered[timebucket.Month, float64]) Series {
	return Series{
		Aggregate: agg,
		Months:    scale.MonthBand(agg),
		Domain:    scale.LinearOf(agg, func(v float64) float64 { return v }),
	}
}

// VaccinationSeries holds the vaccination and booster charts of the
// current selection. Until the asynchronous load for the current version
// lands it is pending and both aggregates are empty.
type VaccinationSeries struct {
	Status       Status
	Err          string
	Vaccinations Series
	Boosters     Series
}

func pendingVaccinations() VaccinationSeries {
	return VaccinationSeries{
		Status:       StatusPending,
		Vaccinations: newSeries(aggregate.Empty[timebucket.Month, float64]()),
		Boosters:     newSeries(aggregate.Empty[timebucket.Month, float64]()),
	}
}

func NewVaccinationSeries(obs []observation.Observation) VaccinationSeries {
	return VaccinationSeries{
		Status:       StatusReady,
		Vaccinations: newSeries(aggregate.MonthlyVaccinations(obs)),
		Boosters:     newSeries(aggregate.MonthlyBoosters(obs)),
	}
}
