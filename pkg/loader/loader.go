package loader

import (
	"context"
	"fmt"

	"github.com/owidviz/covidscope/pkg/observation"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Dataset names one of the CSV resources.
type Dataset string

const (
	Cases        Dataset = "cases"
	Vaccinations Dataset = "vaccinations"
)

func ParseDataset(s string) (Dataset, error) {
	switch Dataset(s) {
	case Cases, Vaccinations:
		return Dataset(s), nil
	}
	return "", fmt.Errorf("unknown dataset %q", s)
}

// Batch is one decoded dataset.
type Batch struct {
	Observations []observation.Observation
	// Rows counts data rows read, Dropped those discarded for an unparsable
	// date.
	Rows    int
	Dropped int
}

// Provider yields the datasets the dashboard is built from.
type Provider interface {
	Observations(ctx context.Context, d Dataset) (*Batch, error)
	Boundaries(ctx context.Context) ([]byte, error)
}

// Sources locates the three resources. Each entry is an http(s) URL or a
// local file path.
type Sources struct {
	Cases        string `yaml:"cases_url" json:"cases_url"`
	Vaccinations string `yaml:"vaccinations_url" json:"vaccinations_url"`
	Boundaries   string `yaml:"boundaries_url" json:"boundaries_url"`
}

var DefaultSources = Sources{
	Cases:        "https://raw.githubusercontent.com/owid/covid-19-data/master/public/data/owid-covid-data.csv",
	Vaccinations: "https://raw.githubusercontent.com/owid/covid-19-data/master/public/data/vaccinations/vaccinations.csv",
	Boundaries:   "https://raw.githubusercontent.com/holtzy/D3-graph-gallery/master/DATA/world.geojson",
}

// Location is where dataset d is read from.
func (s Sources) Location(d Dataset) string {
	if d == Vaccinations {
		return s.Vaccinations
	}
	return s.Cases
}
