package timebucket

import (
	"testing"
	"time"
)

func TestLabelAndKey(t *testing.T) {
	m := Of(time.Date(2020, time.March, 17, 0, 0, 0, 0, time.UTC))
	if got := m.Label(); got != "March 2020" {
		t.Fatalf("Label() = %q", got)
	}
	if got := m.Key(); got != "2020-03" {
		t.Fatalf("Key() = %q", got)
	}
	back, err := ParseLabel("March 2020")
	if err != nil || back != m {
		t.Fatalf("ParseLabel = %v, %v", back, err)
	}
	if _, err := Parse("2020/03"); err == nil {
		t.Fatal("expected error for malformed key")
	}
}

func TestChronologicalOrder(t *testing.T) {
	// Lexical label order would put April before March.
	ms := []Month{MustParse("2021-01"), MustParse("2020-04"), MustParse("2020-03")}
	Sort(ms)
	want := []string{"2020-03", "2020-04", "2021-01"}
	for i, m := range ms {
		if m.Key() != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, m.Key(), want[i])
		}
	}
}

func TestSpanAndBetween(t *testing.T) {
	a, b := MustParse("2020-03"), MustParse("2022-11")
	if n := Between(a, b); n != 32 {
		t.Fatalf("Between = %d, want 32", n)
	}
	span := Span(a, b)
	if len(span) != 33 || span[0] != a || span[32] != b {
		t.Fatalf("unexpected span: len=%d first=%v last=%v", len(span), span[0], span[len(span)-1])
	}
	if Span(b, a) != nil {
		t.Fatal("reversed span should be empty")
	}
	if got := a.Add(-3).Key(); got != "2019-12" {
		t.Fatalf("Add(-3) = %s", got)
	}
}

func TestIsLastDay(t *testing.T) {
	cases := []struct {
		date string
		want bool
	}{
		{"2020-02-28", false},
		{"2020-02-29", true},
		{"2021-02-28", true},
		{"2020-04-30", true},
		{"2020-12-31", true},
		{"2020-12-30", false},
	}
	for _, c := range cases {
		t.Run(c.date, func(t *testing.T) {
			d, _ := time.Parse("2006-01-02", c.date)
			if got := IsLastDay(d); got != c.want {
				t.Fatalf("IsLastDay(%s) = %v", c.date, got)
			}
		})
	}
}

func TestMonthEnd(t *testing.T) {
	m := MustParse("2020-02")
	if m.Days() != 29 {
		t.Fatalf("Days() = %d", m.Days())
	}
	if !m.Contains(m.End()) || m.Contains(m.End().AddDate(0, 0, 1)) {
		t.Fatal("End() must be the last day inside the month")
	}
}
