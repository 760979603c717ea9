package observation

import (
	"testing"
	"time"
)

func TestSelectorPrefersCode(t *testing.T) {
	obs := []Observation{
		{Code: "FRA", Entity: "France"},
		{Code: "OWID_WRL", Entity: "World"},
		{Code: "FRA", Entity: "France"},
	}
	if got := Select(obs, Selector{Entity: "World"}); len(got) != 1 {
		t.Fatalf("by name: got %d rows", len(got))
	}
	if got := Select(obs, Selector{Entity: "ignored", Code: "FRA"}); len(got) != 2 {
		t.Fatalf("by code: got %d rows", len(got))
	}
}

func TestEntitiesFirstSeen(t *testing.T) {
	obs := []Observation{{Entity: "Peru"}, {Entity: "Chad"}, {Entity: "Peru"}, {Entity: ""}, {Entity: "Fiji"}}
	got := Entities(obs)
	want := []string{"Peru", "Chad", "Fiji"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMetricValue(t *testing.T) {
	o := Observation{
		Date:             time.Date(2021, 5, 31, 0, 0, 0, 0, time.UTC),
		NewCases:         10,
		NewCasesSmoothed: 8.5,
		NewDeaths:        2,
		TotalBoosters:    Float(40),
	}
	if v := NewCasesSmoothed.Value(o); v != 8.5 {
		t.Fatalf("smoothed = %v", v)
	}
	if DailyVaccinated.Present(o) || DailyVaccinated.Value(o) != 0 {
		t.Fatal("absent vaccination should read as 0 and not be present")
	}
	if !TotalBoosters.Present(o) || TotalBoosters.Value(o) != 40 {
		t.Fatal("boosters should be present")
	}
	if o.Month().Key() != "2021-05" {
		t.Fatalf("Month() = %s", o.Month().Key())
	}

	m, err := ParseMetric("NEW_DEATHS")
	if err != nil || m != NewDeaths {
		t.Fatalf("ParseMetric = %v, %v", m, err)
	}
	if _, err := ParseMetric("hospitalizations"); err == nil {
		t.Fatal("expected error for unknown metric")
	}
}
