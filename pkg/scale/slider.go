package scale

import (
	"errors"
	"fmt"

	"github.com/owidviz/covidscope/pkg/timebucket"
)

var ErrSliderRange = errors.New("slider index out of range")

// Slider maps an integer position to a month: index i is Start plus i months.
type Slider struct {
	Start timebucket.Month `json:"start"`
	Count int              `json:"count"`
}

// NewSlider covers every month from first to last inclusive.
func NewSlider(first, last timebucket.Month) Slider {
	n := timebucket.Between(first, last) + 1
	if n < 0 {
		n = 0
	}
	return Slider{Start: first, Count: n}
}

func (s Slider) Max() int { return s.Count - 1 }

func (s Slider) Month(index int) (timebucket.Month, error) {
	if index < 0 || index >= s.Count {
		return timebucket.Month{}, fmt.Errorf("%w: %d not in [0, %d]", ErrSliderRange, index, s.Max())
	}
	return s.Start.Add(index), nil
}

// Clamp pulls index into the slider's range.
func (s Slider) Clamp(index int) int {
	if index < 0 || s.Count == 0 {
		return 0
	}
	if index > s.Max() {
		return s.Max()
	}
	return index
}

func (s Slider) Index(m timebucket.Month) (int, bool) {
	i := timebucket.Between(s.Start, m)
	if i < 0 || i >= s.Count {
		return 0, false
	}
	return i, true
}
