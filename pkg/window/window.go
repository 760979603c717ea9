package window

import (
	"fmt"
	"time"

	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/timebucket"
)

const dateLayout = "2006-01-02"

// Window is an inclusive range of calendar dates.
type Window struct {
	Start time.Time
	End   time.Time
}

var (
	// Analysis bounds every dataset before aggregation.
	Analysis = MustNew("2020-03-01", "2022-11-30")
	// TrendAxis is the x domain of the daily trend chart. It runs one month
	// past Analysis, so the last tick has no data behind it.
	TrendAxis = MustNew("2020-03-01", "2022-12-31")
)

// New parses two "2006-01-02" dates.
func New(start, end string) (Window, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return Window{}, fmt.Errorf("invalid window start: %w", err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return Window{}, fmt.Errorf("invalid window end: %w", err)
	}
	if e.Before(s) {
		return Window{}, fmt.Errorf("window end %s is before start %s", end, start)
	}
	return Window{Start: s, End: e}, nil
}

func MustNew(start, end string) Window {
	w, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return w
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t's calendar date is inside the window. The zero
// time is never inside.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	d := day(t)
	return !d.Before(day(w.Start)) && !d.After(day(w.End))
}

// Months lists every month touched by the window, in order.
func (w Window) Months() []timebucket.Month {
	return timebucket.Span(timebucket.Of(w.Start), timebucket.Of(w.End))
}

func (w Window) String() string {
	return w.Start.Format(dateLayout) + ".." + w.End.Format(dateLayout)
}

// Filter returns the observations inside w, preserving order.
func Filter(obs []observation.Observation, w Window) []observation.Observation {
	out := make([]observation.Observation, 0, len(obs))
	for _, o := range obs {
		if w.Contains(o.Date) {
			out = append(out, o)
		}
	}
	return out
}

// Between narrows obs to the months from..to inclusive.
func Between(obs []observation.Observation, from, to timebucket.Month) []observation.Observation {
	w := Window{Start: from.Start(), End: to.End()}
	return Filter(obs, w)
}
