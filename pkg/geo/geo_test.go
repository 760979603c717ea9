package geo

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/scale"
	"github.com/owidviz/covidscope/pkg/timebucket"
)

const world = `{"type":"FeatureCollection","features":[
{"type":"Feature","id":"FRA","properties":{"name":"France"},"geometry":{"type":"Point","coordinates":[2,46]}},
{"type":"Feature","id":"ATA","properties":{"name":"Antarctica"},"geometry":null},
{"type":"Feature","properties":null,"geometry":null}
]}`

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixture(t *testing.T) (*Boundaries, Join) {
	t.Helper()
	b, err := ParseBoundaries([]byte(world))
	if err != nil {
		t.Fatalf("ParseBoundaries: %v", err)
	}
	cases := []observation.Observation{
		{Date: day(2021, time.January, 1), Code: "FRA", NewCases: 300000, NewDeaths: 10},
		{Date: day(2021, time.January, 2), Code: "FRA", NewCases: 300000, NewDeaths: 5},
	}
	vacc := []observation.Observation{
		{Date: day(2021, time.February, 1), Code: "FRA", DailyVaccinated: observation.Float(1234)},
	}
	return b, NewJoin(cases, vacc, observation.NewCases)
}

func TestParseBoundaries(t *testing.T) {
	b, _ := fixture(t)
	if b.Len() != 3 {
		t.Fatalf("Len = %d", b.Len())
	}
	f, ok := b.Feature("ATA")
	if !ok || f.Name != "Antarctica" {
		t.Fatalf("Feature(ATA) = %+v, %v", f, ok)
	}
	if _, err := ParseBoundaries([]byte(`{"type":"Feature"}`)); !errors.Is(err, ErrNotFeatureCollection) {
		t.Fatalf("expected ErrNotFeatureCollection, got %v", err)
	}
	if _, err := ParseBoundaries([]byte(`{`)); !errors.Is(err, ErrNotFeatureCollection) {
		t.Fatalf("expected ErrNotFeatureCollection for bad JSON, got %v", err)
	}
}

func TestLookupMissesAreUniform(t *testing.T) {
	_, j := fixture(t)
	jan := timebucket.MustParse("2021-01")

	hit := j.Lookup("FRA", jan)
	if !hit.Cases.OK || hit.Cases.V != 600000 || hit.Deaths.V != 15 || hit.Vaccinations.OK {
		t.Fatalf("unexpected hit %+v", hit)
	}
	unknownCode := j.Lookup("ATA", jan)
	unknownMonth := j.Lookup("FRA", timebucket.MustParse("2019-01"))
	for _, c := range []Cell{unknownCode, unknownMonth} {
		if c.Cases.OK || c.Deaths.OK || c.Vaccinations.OK {
			t.Fatalf("expected no data, got %+v", c)
		}
	}
	if v := j.Lookup("FRA", timebucket.MustParse("2021-02")).Vaccinations; !v.OK || v.V != 1234 {
		t.Fatalf("vaccinations = %+v", v)
	}
}

func TestLookupWhileVaccinationsLoading(t *testing.T) {
	j := NewJoin(nil, nil, observation.NewCases)
	if c := j.Lookup("FRA", timebucket.MustParse("2021-01")); c.Cases.OK || c.Vaccinations.OK {
		t.Fatalf("empty join should have no data: %+v", c)
	}
}

func TestResolveAndChoropleth(t *testing.T) {
	b, j := fixture(t)
	cells := j.Resolve(b, timebucket.MustParse("2021-01"), scale.CaseColors)
	if len(cells) != 3 {
		t.Fatalf("got %d cells", len(cells))
	}
	if cells[0].Fill != "#fb6a4a" || cells[0].Name != "France" {
		t.Fatalf("France cell = %+v", cells[0])
	}
	if cells[1].Fill != scale.NoDataColor {
		t.Fatalf("Antarctica fill = %s", cells[1].Fill)
	}

	out, err := Choropleth(b, cells)
	if err != nil {
		t.Fatalf("Choropleth: %v", err)
	}
	if !gjson.ValidBytes(out) {
		t.Fatalf("invalid output %s", out)
	}
	doc := gjson.ParseBytes(out)
	if n := len(doc.Get("features").Array()); n != 3 {
		t.Fatalf("got %d features", n)
	}
	if got := doc.Get("features.0.properties.cases").Float(); got != 600000 {
		t.Fatalf("cases property = %v", got)
	}
	if got := doc.Get("features.0.properties.name").String(); got != "France" {
		t.Fatalf("name property lost: %q", got)
	}
	if v := doc.Get("features.1.properties.cases"); v.Type != gjson.Null {
		t.Fatalf("missing cases should be null, got %s", v.Raw)
	}
	if got := doc.Get("features.2.properties.fill").String(); got != scale.NoDataColor {
		t.Fatalf("null properties not replaced: %s", doc.Get("features.2").Raw)
	}

	if _, err := Choropleth(b, cells[:1]); err == nil {
		t.Fatal("expected an error for mismatched cells")
	}
}

func TestCellJSON(t *testing.T) {
	c := Cell{Code: "FRA", Month: timebucket.MustParse("2021-01"), Cases: Value{V: 3, OK: true}}
	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	doc := gjson.ParseBytes(raw)
	if doc.Get("month").String() != "2021-01" || doc.Get("cases").Float() != 3 || doc.Get("deaths").Type != gjson.Null {
		t.Fatalf("unexpected JSON %s", raw)
	}
}
