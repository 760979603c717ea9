package chart

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/owidviz/covidscope/pkg/scale"
	"github.com/owidviz/covidscope/pkg/timebucket"
	"github.com/owidviz/covidscope/pkg/views"
	"github.com/owidviz/covidscope/pkg/window"
)

func barChart() views.BarChart {
	return views.BarChart{
		Name:   "cases",
		Title:  "New Cases per Month: World",
		Domain: scale.Linear{Min: 0, Max: 3100},
		Bars: []views.Bar{
			{Month: timebucket.MustParse("2020-03"), Value: 3100, Height: 1},
			{Month: timebucket.MustParse("2020-04"), Value: 1200, Height: 0.387, Highlighted: true},
		},
	}
}

func TestBarsSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := Bars(&buf, barChart(), SVG); err != nil {
		t.Fatalf("Bars: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Fatalf("output is not svg: %.80s", out)
	}
	if !strings.Contains(out, "2020-04") {
		t.Fatal("month labels missing")
	}
}

func TestBarsAllZero(t *testing.T) {
	c := barChart()
	c.Domain = scale.Linear{}
	for i := range c.Bars {
		c.Bars[i].Value = 0
	}
	var buf bytes.Buffer
	if err := Bars(&buf, c, PNG); err != nil {
		t.Fatalf("Bars: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatal("output is not png")
	}
}

func TestBarsEmpty(t *testing.T) {
	err := Bars(&bytes.Buffer{}, views.BarChart{Name: "boosters"}, SVG)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestTrends(t *testing.T) {
	tc := views.TrendChart{
		From:   window.TrendAxis.Start,
		To:     window.TrendAxis.End,
		Domain: scale.Linear{Max: 50},
		Series: []views.TrendSeries{
			{Country: "India", Points: []views.TrendPoint{
				{Date: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), Value: 10},
				{Date: time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC), Value: 50},
			}},
			{Country: "China"},
		},
	}
	var buf bytes.Buffer
	if err := Trends(&buf, tc, SVG); err != nil {
		t.Fatalf("Trends: %v", err)
	}
	if !strings.Contains(buf.String(), "India") {
		t.Fatal("legend missing")
	}

	tc.Series = tc.Series[1:]
	if err := Trends(&bytes.Buffer{}, tc, SVG); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": SVG, "SVG": SVG, "png": PNG} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Error("gif should be rejected")
	}
}
