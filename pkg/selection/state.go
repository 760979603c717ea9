package selection

import (
	"encoding/json"

	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/timebucket"
)

type FocusKind int

const (
	FocusNone FocusKind = iota
	FocusBucket
	FocusRange
)

func (k FocusKind) String() string {
	switch k {
	case FocusBucket:
		return "bucket"
	case FocusRange:
		return "range"
	}
	return "none"
}

// Focus is the time selection: nothing, one slider bucket, or a brushed
// range of months. Exactly one of these is active.
type Focus struct {
	Kind  FocusKind
	Index int
	From  timebucket.Month
	To    timebucket.Month
}

func (f Focus) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind  string            `json:"kind"`
		Index *int              `json:"index,omitempty"`
		From  *timebucket.Month `json:"from,omitempty"`
		To    *timebucket.Month `json:"to,omitempty"`
	}{Kind: f.Kind.String()}
	switch f.Kind {
	case FocusBucket:
		out.Index = &f.Index
	case FocusRange:
		out.From, out.To = &f.From, &f.To
	}
	return json.Marshal(out)
}

// State is the single selection shared by every view.
type State struct {
	Selector observation.Selector `json:"selector"`
	// Filtered is false until the first explicit pick. Until then the
	// monthly series aggregates every row.
	Filtered bool `json:"filtered"`
	// Version increases on every pick and tags asynchronous loads.
	Version uint64 `json:"version"`
	Focus   Focus  `json:"focus"`
}

func NewState() State {
	return State{Selector: observation.Selector{Entity: observation.World}}
}

// Pick selects an entity. A brushed range does not survive an entity change.
func (s State) Pick(sel observation.Selector) State {
	s.Selector = sel
	s.Filtered = true
	s.Version++
	if s.Focus.Kind == FocusRange {
		s.Focus = Focus{}
	}
	return s
}

func (s State) Slide(index int) State {
	s.Focus = Focus{Kind: FocusBucket, Index: index}
	return s
}

// Brush focuses on from..to, swapping them if given backwards.
func (s State) Brush(from, to timebucket.Month) State {
	if to.Before(from) {
		from, to = to, from
	}
	s.Focus = Focus{Kind: FocusRange, From: from, To: to}
	return s
}

func (s State) ClearFocus() State {
	s.Focus = Focus{}
	return s
}

// BucketIndex returns the slider position, 0 unless a bucket is focused.
func (s State) BucketIndex() int {
	if s.Focus.Kind == FocusBucket {
		return s.Focus.Index
	}
	return 0
}

// Range returns the brushed months, if any.
func (s State) Range() (from, to timebucket.Month, ok bool) {
	if s.Focus.Kind != FocusRange {
		return timebucket.Month{}, timebucket.Month{}, false
	}
	return s.Focus.From, s.Focus.To, true
}

// caseFilter narrows the case rows: all rows before the first pick.
func (s State) caseFilter(obs []observation.Observation) []observation.Observation {
	if !s.Filtered {
		return obs
	}
	return observation.Select(obs, s.Selector)
}

// vaccinationSelector narrows vaccination rows. Before the first pick it
// follows the World aggregate.
func (s State) vaccinationSelector() observation.Selector {
	if !s.Filtered {
		return observation.Selector{Entity: observation.World, Code: observation.WorldCode}
	}
	return s.Selector
}
