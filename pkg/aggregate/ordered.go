package aggregate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/owidviz/covidscope/pkg/timebucket"
)

// Entry is one key/value pair of an Ordered aggregate.
type Entry[K comparable, V any] struct {
	Key   K `json:"key"`
	Value V `json:"value"`
}

// Ordered maps keys to reduced values and remembers the order in which keys
// were first seen. It is never mutated after construction.
type Ordered[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

func newOrdered[K comparable, V any](keys []K, values map[K]V) *Ordered[K, V] {
	return &Ordered[K, V]{keys: keys, values: values}
}

// Empty returns an aggregate with no keys.
func Empty[K comparable, V any]() *Ordered[K, V] {
	return newOrdered[K, V](nil, map[K]V{})
}

func (o *Ordered[K, V]) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Get is a lookup; ok is false for an unknown key or a nil aggregate.
func (o *Ordered[K, V]) Get(k K) (V, bool) {
	var zero V
	if o == nil {
		return zero, false
	}
	v, ok := o.values[k]
	return v, ok
}

// Keys returns a copy of the keys in first-seen order.
func (o *Ordered[K, V]) Keys() []K {
	if o == nil {
		return nil
	}
	return append([]K(nil), o.keys...)
}

// Values returns the values in key order.
func (o *Ordered[K, V]) Values() []V {
	out := make([]V, 0, o.Len())
	for _, k := range o.Keys() {
		out = append(out, o.values[k])
	}
	return out
}

// Entries returns the key/value pairs in key order.
func (o *Ordered[K, V]) Entries() []Entry[K, V] {
	out := make([]Entry[K, V], 0, o.Len())
	for _, k := range o.Keys() {
		out = append(out, Entry[K, V]{Key: k, Value: o.values[k]})
	}
	return out
}

// MarshalJSON encodes the aggregate as a list of entries so the key order
// survives.
func (o *Ordered[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Entries())
}

func (o *Ordered[K, V]) String() string {
	return fmt.Sprintf("%v", o.Entries())
}

// Rollup groups records by key and reduces each group. Keys keep the order
// of their first record.
func Rollup[R any, K comparable, V any](records []R, key func(R) K, reduce func([]R) V) *Ordered[K, V] {
	grouped := make(map[K][]R)
	order := make([]K, 0)
	for _, r := range records {
		k := key(r)
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], r)
	}

	values := make(map[K]V, len(order))
	for _, k := range order {
		values[k] = reduce(grouped[k])
	}
	return newOrdered(order, values)
}

// Rollup2 nests two keys: outer first, inner inside each outer group.
func Rollup2[R any, K1, K2 comparable, V any](records []R, outer func(R) K1, inner func(R) K2, reduce func([]R) V) *Ordered[K1, *Ordered[K2, V]] {
	return Rollup(records, outer, func(group []R) *Ordered[K2, V] {
		return Rollup(group, inner, reduce)
	})
}

// Lookup2 resolves both levels of a nested aggregate. A miss at either level
// is reported the same way.
func Lookup2[K1, K2 comparable, V any](o *Ordered[K1, *Ordered[K2, V]], k1 K1, k2 K2) (V, bool) {
	inner, ok := o.Get(k1)
	if !ok {
		var zero V
		return zero, false
	}
	return inner.Get(k2)
}

// Sum adds value over records.
func Sum[R any](records []R, value func(R) float64) float64 {
	var total float64
	for _, r := range records {
		total += value(r)
	}
	return total
}

// SumIf adds value over the records that satisfy pred.
func SumIf[R any](records []R, pred func(R) bool, value func(R) float64) float64 {
	var total float64
	for _, r := range records {
		if pred(r) {
			total += value(r)
		}
	}
	return total
}

// Chronological returns the entries of a month-keyed aggregate sorted by
// month rather than first-seen order.
func Chronological[V any](o *Ordered[timebucket.Month, V]) []Entry[timebucket.Month, V] {
	entries := o.Entries()
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Key.Before(entries[j].Key) })
	return entries
}

// Descending returns entries sorted by value, largest first.
func Descending[K comparable](o *Ordered[K, float64]) []Entry[K, float64] {
	entries := o.Entries()
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })
	return entries
}
