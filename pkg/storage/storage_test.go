package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/owidviz/covidscope/pkg/loader"
	"github.com/owidviz/covidscope/pkg/observation"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "covidscope.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReplaceAndReadBack(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	batch := &loader.Batch{
		Rows:    4,
		Dropped: 1,
		Observations: []observation.Observation{
			{Date: day(2020, time.March, 2), Code: "FRA", Entity: "France", NewCases: 5, NewDeaths: 1, NewCasesSmoothed: 4.5, NewCasesPerMillion: 0.07},
			{Date: day(2020, time.March, 1), Code: "OWID_WRL", Entity: "World", NewCases: 100},
			{Date: day(2021, time.June, 30), Code: "OWID_WRL", Entity: "World", DailyVaccinated: observation.Float(10), TotalBoosters: observation.Float(40)},
		},
	}
	if err := db.ReplaceDataset(ctx, loader.Cases, "test.csv", batch); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := db.Observations(ctx, loader.Cases)
	if err != nil {
		t.Fatalf("observations: %v", err)
	}
	if got.Rows != 4 || got.Dropped != 1 || len(got.Observations) != 3 {
		t.Fatalf("batch = rows %d dropped %d len %d", got.Rows, got.Dropped, len(got.Observations))
	}
	first := got.Observations[0]
	if first.Entity != "France" || !first.Date.Equal(day(2020, time.March, 2)) || first.NewCasesSmoothed != 4.5 {
		t.Fatalf("rows should come back in stored order, first = %+v", first)
	}
	if first.DailyVaccinated != nil || first.TotalBoosters != nil {
		t.Fatal("blank vaccination fields should stay nil")
	}
	last := got.Observations[2]
	if last.DailyVaccinated == nil || *last.DailyVaccinated != 10 || *last.TotalBoosters != 40 {
		t.Fatalf("vaccination fields = %v %v", last.DailyVaccinated, last.TotalBoosters)
	}

	// A second load replaces rather than appends.
	batch.Observations = batch.Observations[:1]
	if err := db.ReplaceDataset(ctx, loader.Cases, "test.csv", batch); err != nil {
		t.Fatalf("replace again: %v", err)
	}
	got, err = db.Observations(ctx, loader.Cases)
	if err != nil || len(got.Observations) != 1 {
		t.Fatalf("after replace: %v, %d rows", err, len(got.Observations))
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 1 || stats[0].Dataset != loader.Cases || stats[0].Observations != 1 || stats[0].Entities != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if !stats[0].First.Equal(day(2020, time.March, 2)) {
		t.Fatalf("first = %v", stats[0].First)
	}

	loads, err := db.ListLoads(ctx)
	if err != nil || len(loads) != 1 || loads[0].Source != "test.csv" {
		t.Fatalf("loads = %+v, %v", loads, err)
	}
}

func TestNotLoaded(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	if _, err := db.Observations(ctx, loader.Vaccinations); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("err = %v, want ErrNotLoaded", err)
	}
	if _, err := db.Boundaries(ctx); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("err = %v, want ErrNotLoaded", err)
	}
}

func TestBoundaries(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	for _, body := range []string{`{"type":"FeatureCollection","features":[]}`, `{"type":"FeatureCollection","features":[{}]}`} {
		if err := db.SaveBoundaries(ctx, "world.geojson", []byte(body)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	got, err := db.Boundaries(ctx)
	if err != nil {
		t.Fatalf("boundaries: %v", err)
	}
	if string(got) != `{"type":"FeatureCollection","features":[{}]}` {
		t.Fatalf("boundaries = %s", got)
	}
}

func TestReplaceRollsBackOnError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("new sqlmock: %v", err)
	}
	defer sqlDB.Close()

	boom := errors.New("disk full")
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM observations").WithArgs("cases").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectPrepare("INSERT INTO observations")
	mock.ExpectExec("INSERT INTO observations").WillReturnError(boom)
	mock.ExpectRollback()

	db := New(sqlDB)
	batch := &loader.Batch{Observations: []observation.Observation{{Date: day(2020, time.March, 1), Code: "FRA", Entity: "France"}}}
	err = db.ReplaceDataset(context.Background(), loader.Cases, "x", batch)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
