package storage

import (
	"errors"
	"time"

	"github.com/owidviz/covidscope/pkg/loader"
)

// ErrNotLoaded is returned when a dataset has never been stored.
var ErrNotLoaded = errors.New("dataset not loaded")

// Load records one successful replacement of a dataset.
type Load struct {
	Dataset  loader.Dataset
	Source   string
	LoadedAt time.Time
	Rows     int
	Dropped  int
}

// DatasetStats summarizes what is cached for one dataset.
type DatasetStats struct {
	Dataset      loader.Dataset
	Observations int
	Entities     int
	First        time.Time
	Last         time.Time
	LoadedAt     time.Time
}
