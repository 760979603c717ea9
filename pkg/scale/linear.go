package scale

import (
	"math"

	mmscale "github.com/aclements/go-moremath/scale"
	"github.com/aclements/go-moremath/stats"

	"github.com/owidviz/covidscope/pkg/aggregate"
)

// Linear is a quantitative domain anchored at zero.
type Linear struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// LinearDomain returns [0, max(values)]. An empty or all-negative input
// yields [0, 0].
func LinearDomain(values []float64) Linear {
	_, hi := stats.Bounds(values)
	if math.IsNaN(hi) || hi < 0 {
		hi = 0
	}
	return Linear{Min: 0, Max: hi}
}

// LinearOf derives the domain of one field of an aggregate.
func LinearOf[K comparable, V any](o *aggregate.Ordered[K, V], value func(V) float64) Linear {
	values := make([]float64, 0, o.Len())
	for _, v := range o.Values() {
		values = append(values, value(v))
	}
	return LinearDomain(values)
}

func (l Linear) IsEmpty() bool { return l.Max <= l.Min }

func (l Linear) quantitative() mmscale.Linear {
	return mmscale.Linear{Min: l.Min, Max: l.Max, Clamp: true}
}

// Map normalizes v into [0, 1]. An empty domain maps everything to 0.
func (l Linear) Map(v float64) float64 {
	if l.IsEmpty() {
		return 0
	}
	return l.quantitative().Map(v)
}

// Ticks returns at most n major tick values.
func (l Linear) Ticks(n int) []float64 {
	if l.IsEmpty() {
		return []float64{l.Min}
	}
	major, _ := l.quantitative().Ticks(mmscale.TickOptions{Max: n})
	return major
}

// Nice widens the domain to round tick boundaries, keeping Min at zero.
func (l Linear) Nice(n int) Linear {
	if l.IsEmpty() {
		return l
	}
	q := l.quantitative()
	q.Nice(mmscale.TickOptions{Max: n})
	return Linear{Min: l.Min, Max: q.Max}
}
