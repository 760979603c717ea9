package selection

import (
	"github.com/owidviz/covidscope/pkg/geo"
	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/scale"
	"github.com/owidviz/covidscope/pkg/timebucket"
	"github.com/owidviz/covidscope/pkg/window"
)

// Snapshot is a consistent, read-only view of a session at one point in
// time. Aggregates are immutable, so a snapshot stays valid after the
// session moves on.
type Snapshot struct {
	State       State
	Window      window.Window
	Metric      observation.Metric
	Entities    []string
	CasesStatus Status
	CasesErr    string
	// Observations are the window-filtered case rows of every entity.
	Observations []observation.Observation
	Primary      MonthlySeries
	Overview     MonthlySeries
	Vaccination  VaccinationSeries
	Join         geo.Join
	Slider       scale.Slider
	// Highlights lists the highlighted months of each chart.
	Highlights map[string][]timebucket.Month
}

// MapMonth is the month the slider points at.
func (s Snapshot) MapMonth() timebucket.Month {
	m, err := s.Slider.Month(s.Slider.Clamp(s.State.BucketIndex()))
	if err != nil {
		return s.Slider.Start
	}
	return m
}

// Highlighted reports whether month is highlighted on chart.
func (s Snapshot) Highlighted(chart string, month timebucket.Month) bool {
	for _, m := range s.Highlights[chart] {
		if m == month {
			return true
		}
	}
	return false
}

func (s *Session) snapshot() Snapshot {
	highlights := make(map[string][]timebucket.Month)
	for _, name := range []string{ChartCases, ChartDeaths, ChartVaccinations, ChartBoosters} {
		if m, ok := s.highlights.Marks(name); ok {
			highlights[name] = m.ActiveKeys()
		}
	}
	return Snapshot{
		State:        s.state,
		Window:       s.window,
		Metric:       s.metric,
		Entities:     append([]string(nil), s.entities...),
		CasesStatus:  s.casesStatus,
		CasesErr:     s.casesErr,
		Observations: s.cases,
		Primary:      s.primary,
		Overview:     s.overview,
		Vaccination:  s.vaccination,
		Join:         s.join,
		Slider:       s.slider,
		Highlights:   highlights,
	}
}
