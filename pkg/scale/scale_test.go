package scale

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/owidviz/covidscope/pkg/aggregate"
	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/timebucket"
)

func TestLinearDomain(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"negative", []float64{-4, -1}, 0},
		{"max", []float64{3, 12, 7}, 12},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := LinearDomain(c.values)
			if got.Min != 0 || got.Max != c.want {
				t.Fatalf("got %+v, want [0, %v]", got, c.want)
			}
		})
	}
}

func TestLinearOfAggregate(t *testing.T) {
	obs := []observation.Observation{
		{Date: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), NewCases: 10, NewDeaths: 4},
		{Date: time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), NewCases: 30, NewDeaths: 1},
	}
	agg := aggregate.Monthly(obs, observation.NewCases)
	cases := LinearOf(agg, func(v aggregate.Totals) float64 { return v.Cases })
	deaths := LinearOf(agg, func(v aggregate.Totals) float64 { return v.Deaths })
	if cases.Max != 30 || deaths.Max != 4 {
		t.Fatalf("cases=%+v deaths=%+v", cases, deaths)
	}
	if got := cases.Map(15); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("Map(15) = %v", got)
	}
	if got := cases.Map(60); got != 1 {
		t.Fatalf("Map clamps, got %v", got)
	}
}

func TestLinearTicks(t *testing.T) {
	l := Linear{Max: 3100}
	ticks := l.Ticks(6)
	if len(ticks) == 0 || len(ticks) > 6 || ticks[0] != 0 {
		t.Fatalf("unexpected ticks %v", ticks)
	}
	n := l.Nice(6)
	if n.Min != 0 || n.Max < 3100 {
		t.Fatalf("Nice = %+v", n)
	}
	if got := (Linear{}).Ticks(5); len(got) != 1 || got[0] != 0 {
		t.Fatalf("empty domain ticks = %v", got)
	}
}

func TestBandLayout(t *testing.T) {
	b := NewBand([]string{"a", "b", "c", "a"})
	if b.Len() != 3 {
		t.Fatalf("Len = %d", b.Len())
	}
	l := Layout{Width: 290, PaddingInner: 0.1}
	step := b.Step(l)
	if math.Abs(step-100) > 1e-9 {
		t.Fatalf("step = %v, want 100", step)
	}
	if bw := b.Bandwidth(l); math.Abs(bw-90) > 1e-9 {
		t.Fatalf("bandwidth = %v, want 90", bw)
	}
	if x, ok := b.Position("c", l); !ok || math.Abs(x-200) > 1e-9 {
		t.Fatalf("Position(c) = %v, %v", x, ok)
	}
	if _, ok := b.Position("z", l); ok {
		t.Fatal("unknown key should have no position")
	}
}

func TestBandInvert(t *testing.T) {
	b := NewBand([]string{"a", "b", "c", "d"})
	l := Layout{Width: 390, PaddingInner: 0.1}
	got := b.Invert(250, 50, l)
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("Invert = %v", got)
	}
	if got := b.Invert(10, 20, l); len(got) != 0 {
		t.Fatalf("Invert of an empty gap = %v", got)
	}
}

func TestMonthBandIsChronological(t *testing.T) {
	obs := []observation.Observation{
		{Date: time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	b := MonthBand(aggregate.Monthly(obs, observation.NewCases))
	first, _ := b.At(0)
	if first != timebucket.MustParse("2020-03") {
		t.Fatalf("first band = %v", first)
	}
}

func TestThreshold(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{0, "#fee5d9"},
		{9999, "#fee5d9"},
		{1e4, "#fcbba1"},
		{4e5, "#fc9272"},
		{5e5, "#fb6a4a"},
		{2e6, "#de2d26"},
		{3e7, "#a50f15"},
	}
	for _, c := range cases {
		if got := CaseColors.Color(c.v); got != c.want {
			t.Fatalf("Color(%v) = %s, want %s", c.v, got, c.want)
		}
	}
	if got := CaseColors.Fill(5e5, false); got != NoDataColor {
		t.Fatalf("miss should be no-data, got %s", got)
	}
	if legend := CaseColors.Legend(); len(legend) != 6 || legend[5].From != 1e7 {
		t.Fatalf("legend = %v", legend)
	}
}

func TestSlider(t *testing.T) {
	s := NewSlider(timebucket.MustParse("2020-03"), timebucket.MustParse("2022-11"))
	if s.Count != 33 {
		t.Fatalf("Count = %d", s.Count)
	}
	m, err := s.Month(0)
	if err != nil || m.Key() != "2020-03" {
		t.Fatalf("Month(0) = %v, %v", m, err)
	}
	m, _ = s.Month(32)
	if m.Key() != "2022-11" {
		t.Fatalf("Month(32) = %v", m)
	}
	if _, err := s.Month(33); !errors.Is(err, ErrSliderRange) {
		t.Fatalf("expected ErrSliderRange, got %v", err)
	}
	if s.Clamp(99) != 32 || s.Clamp(-1) != 0 {
		t.Fatal("Clamp out of range")
	}
	if i, ok := s.Index(timebucket.MustParse("2021-03")); !ok || i != 12 {
		t.Fatalf("Index = %d, %v", i, ok)
	}
}
