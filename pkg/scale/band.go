package scale

import (
	"math"

	"github.com/owidviz/covidscope/pkg/aggregate"
	"github.com/owidviz/covidscope/pkg/timebucket"
)

// Band is a categorical domain: the distinct keys of an aggregate, in
// display order.
type Band[K comparable] struct {
	keys  []K
	index map[K]int
}

// NewBand keeps the first occurrence of each key.
func NewBand[K comparable](keys []K) Band[K] {
	b := Band[K]{index: make(map[K]int, len(keys))}
	for _, k := range keys {
		if _, dup := b.index[k]; dup {
			continue
		}
		b.index[k] = len(b.keys)
		b.keys = append(b.keys, k)
	}
	return b
}

// BandOf uses the aggregate's own key order.
func BandOf[K comparable, V any](o *aggregate.Ordered[K, V]) Band[K] {
	return NewBand(o.Keys())
}

// MonthBand orders a month-keyed aggregate chronologically.
func MonthBand[V any](o *aggregate.Ordered[timebucket.Month, V]) Band[timebucket.Month] {
	keys := o.Keys()
	timebucket.Sort(keys)
	return NewBand(keys)
}

func (b Band[K]) Len() int  { return len(b.keys) }
func (b Band[K]) Keys() []K { return append([]K(nil), b.keys...) }

func (b Band[K]) Index(k K) (int, bool) {
	i, ok := b.index[k]
	return i, ok
}

func (b Band[K]) At(i int) (K, bool) {
	if i < 0 || i >= len(b.keys) {
		var zero K
		return zero, false
	}
	return b.keys[i], true
}

// Layout places a band domain on a pixel range.
type Layout struct {
	Start        float64 `json:"start"`
	Width        float64 `json:"width"`
	PaddingInner float64 `json:"padding_inner"`
}

// DefaultLayout matches the bar charts: 10% inner padding.
func DefaultLayout(width float64) Layout {
	return Layout{Width: width, PaddingInner: 0.1}
}

// Step is the distance between the starts of two adjacent bands.
func (b Band[K]) Step(l Layout) float64 {
	if len(b.keys) == 0 {
		return 0
	}
	return l.Width / math.Max(1, float64(len(b.keys))-l.PaddingInner)
}

func (b Band[K]) Bandwidth(l Layout) float64 {
	return b.Step(l) * (1 - l.PaddingInner)
}

// Position is the start of k's band.
func (b Band[K]) Position(k K, l Layout) (float64, bool) {
	i, ok := b.index[k]
	if !ok {
		return 0, false
	}
	return l.Start + b.Step(l)*float64(i), true
}

// Invert returns the keys whose band starts inside [x0, x1], in domain
// order. The bounds may be given in either order.
func (b Band[K]) Invert(x0, x1 float64, l Layout) []K {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	var out []K
	for _, k := range b.keys {
		x, _ := b.Position(k, l)
		if x >= x0 && x <= x1 {
			out = append(out, k)
		}
	}
	return out
}
