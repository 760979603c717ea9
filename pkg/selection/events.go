package selection

import (
	"errors"
	"fmt"

	"github.com/owidviz/covidscope/pkg/loader"
	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/scale"
	"github.com/owidviz/covidscope/pkg/timebucket"
	"github.com/owidviz/covidscope/pkg/window"
)

var ErrEmptySelector = errors.New("entity or code required")

// Event is something the session reacts to. Events are applied one at a
// time on the session goroutine.
type Event interface {
	apply(s *Session) error
}

// EntityPicked selects an entity from the dropdown (by name) or the map
// (by code).
type EntityPicked struct {
	Selector observation.Selector
}

func (e EntityPicked) apply(s *Session) error {
	if e.Selector.Entity == "" && e.Selector.Code == "" {
		return ErrEmptySelector
	}
	s.state = s.state.Pick(e.Selector)
	s.log.Debugf("Selected %s (version %d)", e.Selector, s.state.Version)
	s.reaggregateCases()
	s.vaccination = pendingVaccinations()
	s.highlights.Remove(ChartVaccinations)
	s.highlights.Remove(ChartBoosters)
	s.requestVaccinations(s.state.Version)
	return nil
}

// SliderMoved focuses the map on one month.
type SliderMoved struct {
	Index int
}

func (e SliderMoved) apply(s *Session) error {
	if _, err := s.slider.Month(e.Index); err != nil {
		return err
	}
	s.state = s.state.Slide(e.Index)
	return nil
}

// BrushEnded selects the months whose bars start inside [X0, X1] of the
// overview chart laid out with Layout. An empty brush clears the focus.
type BrushEnded struct {
	X0, X1 float64
	Layout scale.Layout
}

func (e BrushEnded) apply(s *Session) error {
	months := s.overview.Months.Invert(e.X0, e.X1, e.Layout)
	if len(months) == 0 {
		s.state = s.state.ClearFocus()
		return nil
	}
	s.state = s.state.Brush(months[0], months[len(months)-1])
	return nil
}

// BrushMonths selects a month range directly.
type BrushMonths struct {
	From, To timebucket.Month
}

func (e BrushMonths) apply(s *Session) error {
	if e.From.IsZero() || e.To.IsZero() {
		return fmt.Errorf("brush needs both months")
	}
	s.state = s.state.Brush(e.From, e.To)
	return nil
}

type BrushCleared struct{}

func (BrushCleared) apply(s *Session) error {
	if s.state.Focus.Kind == FocusRange {
		s.state = s.state.ClearFocus()
	}
	return nil
}

// Hovered moves a pointer onto (Active) or off a month bar.
type Hovered struct {
	Pointer string
	Month   timebucket.Month
	Active  bool
}

func (e Hovered) apply(s *Session) error {
	pointer := e.Pointer
	if pointer == "" {
		pointer = "default"
	}
	s.highlights.Highlight(pointer, e.Month, e.Active)
	return nil
}

// casesLoaded is posted by the case dataset load issued in generation.
type casesLoaded struct {
	generation uint64
	batch      *loader.Batch
	err        error
}

func (e casesLoaded) apply(s *Session) error {
	if e.generation != s.generation {
		s.log.Debugf("Discarding case data from load %d, current is %d", e.generation, s.generation)
		return nil
	}
	if e.err != nil {
		s.casesStatus = StatusFailed
		s.casesErr = e.err.Error()
		s.log.Errorf("Could not load case data: %v", e.err)
		return nil
	}
	s.cases = window.Filter(e.batch.Observations, s.window)
	s.casesStatus = StatusReady
	s.casesErr = ""
	s.entities = observation.Entities(s.cases)
	s.overview = NewMonthlySeries(s.cases, observation.NewCasesPerMillion)
	s.join = s.join.WithCases(s.cases, s.metric)
	s.reaggregateCases()
	s.log.Infof("Case data ready: %d rows in %s (%d dropped)", len(s.cases), s.window, e.batch.Dropped)
	return nil
}

// vaccinationsLoaded is the continuation of a vaccination request issued
// at version, in load generation.
type vaccinationsLoaded struct {
	version    uint64
	generation uint64
	all        []observation.Observation
	err        error
}

func (e vaccinationsLoaded) apply(s *Session) error {
	if e.version != s.state.Version || e.generation != s.generation {
		s.log.Debugf("Discarding vaccination data for version %d load %d, current is %d load %d",
			e.version, e.generation, s.state.Version, s.generation)
		return nil
	}
	if e.err != nil {
		s.vaccination.Status = StatusFailed
		s.vaccination.Err = e.err.Error()
		s.log.Errorf("Could not load vaccination data: %v", e.err)
		return nil
	}
	if s.join.Vaccinations == nil || s.joinGen != s.generation {
		s.join = s.join.WithVaccinations(e.all)
		s.joinGen = s.generation
	}
	s.vaccination = NewVaccinationSeries(observation.Select(e.all, s.state.vaccinationSelector()))
	s.installMarks(ChartVaccinations, s.vaccination.Vaccinations.Months)
	s.installMarks(ChartBoosters, s.vaccination.Boosters.Months)
	return nil
}
