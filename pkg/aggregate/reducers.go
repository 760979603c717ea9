package aggregate

import (
	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/timebucket"
)

// Totals is the monthly reduction shared by the bar charts and the map.
type Totals struct {
	Cases  float64 `json:"cases"`
	Deaths float64 `json:"deaths"`
}

func byMonth(o observation.Observation) timebucket.Month { return o.Month() }
func byCode(o observation.Observation) string            { return o.Code }
func byEntity(o observation.Observation) string          { return o.Entity }

func totals(cases observation.Metric) func([]observation.Observation) Totals {
	return func(group []observation.Observation) Totals {
		return Totals{
			Cases:  Sum(group, cases.Value),
			Deaths: Sum(group, observation.NewDeaths.Value),
		}
	}
}

// Monthly sums cases (read through the given metric) and deaths per month.
func Monthly(obs []observation.Observation, cases observation.Metric) *Ordered[timebucket.Month, Totals] {
	return Rollup(obs, byMonth, totals(cases))
}

// ByCodeMonth is Monthly nested under the ISO code, for the map join.
func ByCodeMonth(obs []observation.Observation, cases observation.Metric) *Ordered[string, *Ordered[timebucket.Month, Totals]] {
	return Rollup2(obs, byCode, byMonth, totals(cases))
}

// MonthlyVaccinations sums daily people vaccinated per month. A month exists
// as soon as one row for it exists, even if every value was blank.
func MonthlyVaccinations(obs []observation.Observation) *Ordered[timebucket.Month, float64] {
	return Rollup(obs, byMonth, func(group []observation.Observation) float64 {
		return Sum(group, observation.DailyVaccinated.Value)
	})
}

// ByCodeMonthVaccinations nests MonthlyVaccinations under the ISO code.
func ByCodeMonthVaccinations(obs []observation.Observation) *Ordered[string, *Ordered[timebucket.Month, float64]] {
	return Rollup2(obs, byCode, byMonth, func(group []observation.Observation) float64 {
		return Sum(group, observation.DailyVaccinated.Value)
	})
}

// MonthlyBoosters reduces cumulative booster counts to one value per month:
// only rows dated on the last day of their month contribute.
func MonthlyBoosters(obs []observation.Observation) *Ordered[timebucket.Month, float64] {
	lastDay := func(o observation.Observation) bool { return timebucket.IsLastDay(o.Date) }
	return Rollup(obs, byMonth, func(group []observation.Observation) float64 {
		return SumIf(group, lastDay, observation.TotalBoosters.Value)
	})
}

// ByEntity sums metric per entity name.
func ByEntity(obs []observation.Observation, metric observation.Metric) *Ordered[string, float64] {
	return Rollup(obs, byEntity, func(group []observation.Observation) float64 {
		return Sum(group, metric.Value)
	})
}
