package observation

import (
	"fmt"
	"strings"
)

// Metric names one numeric column of an Observation.
type Metric string

const (
	NewCases           Metric = "new_cases"
	NewCasesSmoothed   Metric = "new_cases_smoothed"
	NewCasesPerMillion Metric = "new_cases_per_million"
	NewDeaths          Metric = "new_deaths"
	DailyVaccinated    Metric = "daily_people_vaccinated"
	TotalBoosters      Metric = "total_boosters"
)

var metrics = []Metric{NewCases, NewCasesSmoothed, NewCasesPerMillion, NewDeaths, DailyVaccinated, TotalBoosters}

// ParseMetric accepts a column name, case-insensitively.
func ParseMetric(s string) (Metric, error) {
	for _, m := range metrics {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Value reads the metric from o. Absent optional values read as 0.
func (m Metric) Value(o Observation) float64 {
	switch m {
	case NewCases:
		return o.NewCases
	case NewCasesSmoothed:
		return o.NewCasesSmoothed
	case NewCasesPerMillion:
		return o.NewCasesPerMillion
	case NewDeaths:
		return o.NewDeaths
	case DailyVaccinated:
		return deref(o.DailyVaccinated)
	case TotalBoosters:
		return deref(o.TotalBoosters)
	}
	return 0
}

// Present reports whether o carries a value for the metric.
func (m Metric) Present(o Observation) bool {
	switch m {
	case DailyVaccinated:
		return o.DailyVaccinated != nil
	case TotalBoosters:
		return o.TotalBoosters != nil
	}
	return true
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
