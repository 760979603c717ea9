package timebucket

import (
	"fmt"
	"sort"
	"time"
)

const (
	labelLayout = "January 2006"
	keyLayout   = "2006-01"
)

// Month is a calendar year+month bucket. The zero value is not a valid month.
type Month struct {
	Year  int
	Month time.Month
}

// Of returns the bucket containing t.
func Of(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Parse reads a "2006-01" key.
func Parse(key string) (Month, error) {
	t, err := time.Parse(keyLayout, key)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return Of(t), nil
}

// ParseLabel reads a "January 2006" label.
func ParseLabel(label string) (Month, error) {
	t, err := time.Parse(labelLayout, label)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month label %q: %w", label, err)
	}
	return Of(t), nil
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(key string) Month {
	m, err := Parse(key)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }

// Start is midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is midnight UTC on the last day of the month.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

func (m Month) Days() int { return m.End().Day() }

// Label is the human form, e.g. "March 2020".
func (m Month) Label() string { return m.Start().Format(labelLayout) }

// Key is the sortable form, e.g. "2020-03".
func (m Month) Key() string { return m.Start().Format(keyLayout) }

func (m Month) String() string { return m.Label() }

// Add moves n months forward (or backward when n < 0).
func (m Month) Add(n int) Month {
	return Of(m.Start().AddDate(0, n, 0))
}

func (m Month) index() int { return m.Year*12 + int(m.Month) - 1 }

// Compare orders months chronologically.
func (m Month) Compare(o Month) int {
	switch a, b := m.index(), o.index(); {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (m Month) Before(o Month) bool { return m.Compare(o) < 0 }
func (m Month) After(o Month) bool  { return m.Compare(o) > 0 }

// Contains reports whether t falls in the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.Key()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Between returns the number of months from a to b.
func Between(a, b Month) int {
	return b.index() - a.index()
}

// Span lists every month from a to b inclusive. It is empty when b is before a.
func Span(a, b Month) []Month {
	n := Between(a, b) + 1
	if n <= 0 {
		return nil
	}
	out := make([]Month, n)
	for i := range out {
		out[i] = a.Add(i)
	}
	return out
}

// Sort orders months chronologically in place.
func Sort(ms []Month) {
	sort.Slice(ms, func(i, j int) bool { return ms[i].Before(ms[j]) })
}

// IsLastDay reports whether t is the last calendar day of its month.
func IsLastDay(t time.Time) bool {
	return t.AddDate(0, 0, 1).Month() != t.Month()
}
