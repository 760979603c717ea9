package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const casesCSV = `iso_code,continent,location,date,new_cases,new_cases_smoothed,new_deaths,new_cases_per_million
OWID_WRL,,World,2020-03-01,100,95.5,3,12.8
OWID_WRL,,World,not-a-date,100,,,
OWID_WRL,,World,2020-03-02,,abc,-4,
FRA,Europe,France,2020-03-01,7,6.1,1,0.1
`

const vaccinationsCSV = `location,iso_code,date,total_boosters,daily_people_vaccinated
World,OWID_WRL,2021-06-29,,120
World,OWID_WRL,2021-06-30,40,
`

func TestDecodeDefaults(t *testing.T) {
	batch, err := Decode(strings.NewReader(casesCSV), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if batch.Rows != 4 || batch.Dropped != 1 || len(batch.Observations) != 3 {
		t.Fatalf("rows=%d dropped=%d kept=%d", batch.Rows, batch.Dropped, len(batch.Observations))
	}
	first := batch.Observations[0]
	if first.Entity != "World" || first.Code != "OWID_WRL" || first.NewCases != 100 || first.NewCasesSmoothed != 95.5 || first.NewCasesPerMillion != 12.8 {
		t.Fatalf("unexpected first row %+v", first)
	}
	blank := batch.Observations[1]
	if blank.NewCases != 0 || blank.NewCasesSmoothed != 0 || blank.NewDeaths != 0 {
		t.Fatalf("missing, malformed and negative counts should read as 0: %+v", blank)
	}
	if blank.DailyVaccinated != nil || blank.TotalBoosters != nil {
		t.Fatal("columns absent from the file should be absent on the row")
	}
}

func TestDecodeOptionalFields(t *testing.T) {
	batch, err := Decode(strings.NewReader(vaccinationsCSV), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	a, b := batch.Observations[0], batch.Observations[1]
	if a.TotalBoosters != nil || a.DailyVaccinated == nil || *a.DailyVaccinated != 120 {
		t.Fatalf("unexpected first row %+v", a)
	}
	if b.TotalBoosters == nil || *b.TotalBoosters != 40 || b.DailyVaccinated != nil {
		t.Fatalf("unexpected second row %+v", b)
	}
}

func TestDecodeMissingColumn(t *testing.T) {
	_, err := Decode(strings.NewReader("location,new_cases\nWorld,1\n"), nil)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	_, err = Decode(strings.NewReader(""), nil)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn for empty input, got %v", err)
	}
}

func TestRemoteOverHTTP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cases.csv":
			w.Write([]byte(casesCSV))
		case "/world.geojson":
			w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	remote, err := NewRemote(Sources{
		Cases:        ts.URL + "/cases.csv",
		Vaccinations: ts.URL + "/missing.csv",
		Boundaries:   ts.URL + "/world.geojson",
	}, Options{RetryMax: 1})
	if err != nil {
		t.Fatalf("NewRemote: %v", err)
	}

	ctx := context.Background()
	batch, err := remote.Observations(ctx, Cases)
	if err != nil {
		t.Fatalf("Observations: %v", err)
	}
	if len(batch.Observations) != 3 {
		t.Fatalf("got %d observations", len(batch.Observations))
	}
	if _, err := remote.Observations(ctx, Vaccinations); err == nil {
		t.Fatal("expected an error for a 404")
	}
	raw, err := remote.Boundaries(ctx)
	if err != nil || !strings.Contains(string(raw), "FeatureCollection") {
		t.Fatalf("Boundaries = %s, %v", raw, err)
	}
}

func TestRemoteFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaccinations.csv")
	if err := os.WriteFile(path, []byte(vaccinationsCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	remote, err := NewRemote(Sources{Vaccinations: path}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	batch, err := remote.Observations(context.Background(), Vaccinations)
	if err != nil || len(batch.Observations) != 2 {
		t.Fatalf("Observations = %v, %v", batch, err)
	}
	if _, err := remote.Boundaries(context.Background()); err == nil {
		t.Fatal("expected an error with no boundaries source")
	}
}

func TestNewRemoteRejectsBadProxy(t *testing.T) {
	if _, err := NewRemote(DefaultSources, Options{Proxy: "://bad"}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestParseDataset(t *testing.T) {
	if d, err := ParseDataset("vaccinations"); err != nil || d != Vaccinations {
		t.Fatalf("ParseDataset = %v, %v", d, err)
	}
	if _, err := ParseDataset("deaths"); err == nil {
		t.Fatal("expected an error")
	}
}
