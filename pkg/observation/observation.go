package observation

import (
	"fmt"
	"time"

	"github.com/owidviz/covidscope/pkg/timebucket"
)

const (
	// World is the aggregate row OWID publishes next to countries. It is a
	// literal entity name, selectable like any other.
	World     = "World"
	WorldCode = "OWID_WRL"
)

// Continents are the entity names the treemap groups by.
var Continents = []string{"Africa", "Asia", "Europe", "North America", "South America", "Oceania"}

// Observation is one entity-day row. Counts are never negative; the
// vaccination fields are nil when the source left them blank.
type Observation struct {
	Date               time.Time `json:"date"`
	Code               string    `json:"iso_code"`
	Entity             string    `json:"location"`
	NewCases           float64   `json:"new_cases"`
	NewCasesSmoothed   float64   `json:"new_cases_smoothed"`
	NewCasesPerMillion float64   `json:"new_cases_per_million"`
	NewDeaths          float64   `json:"new_deaths"`
	DailyVaccinated    *float64  `json:"daily_people_vaccinated,omitempty"`
	TotalBoosters      *float64  `json:"total_boosters,omitempty"`
}

// Month is the calendar month the row is dated in.
func (o Observation) Month() timebucket.Month {
	return timebucket.Of(o.Date)
}

// Selector picks the rows of one entity. When Code is set it wins over the
// name, which is how map clicks select a country.
type Selector struct {
	Entity string `json:"entity"`
	Code   string `json:"code,omitempty"`
}

// Match reports whether o belongs to the selected entity.
func (s Selector) Match(o Observation) bool {
	if s.Code != "" {
		return o.Code == s.Code
	}
	return o.Entity == s.Entity
}

func (s Selector) String() string {
	if s.Code != "" {
		return fmt.Sprintf("%s (%s)", s.Entity, s.Code)
	}
	return s.Entity
}

// Select returns the rows matching sel, in input order.
func Select(obs []Observation, sel Selector) []Observation {
	var out []Observation
	for _, o := range obs {
		if sel.Match(o) {
			out = append(out, o)
		}
	}
	return out
}

// Entities lists distinct entity names in first-seen order.
func Entities(obs []Observation) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range obs {
		if o.Entity == "" {
			continue
		}
		if _, ok := seen[o.Entity]; ok {
			continue
		}
		seen[o.Entity] = struct{}{}
		out = append(out, o.Entity)
	}
	return out
}

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 { return &v }
