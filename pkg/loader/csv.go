package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/owidviz/covidscope/pkg/observation"
)

var ErrMissingColumn = errors.New("missing required column")

const dateLayout = "2006-01-02"

var requiredColumns = []string{"date", "iso_code", "location"}

type columns map[string]int

func (c columns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// Decode reads an OWID CSV export. Rows whose date does not parse are
// dropped and counted; malformed counts read as 0 and malformed optional
// vaccination fields as absent.
func Decode(r io.Reader, log Logger) (*Batch, error) {
	if log == nil {
		log = nopLogger{}
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty dataset: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("could not read header: %w", err)
	}
	cols := make(columns, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	batch := &Batch{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", batch.Rows+2, err)
		}
		batch.Rows++

		date, err := time.Parse(dateLayout, cols.get(record, "date"))
		if err != nil {
			batch.Dropped++
			log.Debugf("Dropping row %d: %v", batch.Rows, err)
			continue
		}
		batch.Observations = append(batch.Observations, observation.Observation{
			Date:               date,
			Code:               cols.get(record, "iso_code"),
			Entity:             cols.get(record, "location"),
			NewCases:           count(cols.get(record, "new_cases")),
			NewCasesSmoothed:   count(cols.get(record, "new_cases_smoothed")),
			NewCasesPerMillion: count(cols.get(record, "new_cases_per_million")),
			NewDeaths:          count(cols.get(record, "new_deaths")),
			DailyVaccinated:    optional(cols.get(record, "daily_people_vaccinated")),
			TotalBoosters:      optional(cols.get(record, "total_boosters")),
		})
	}
	if batch.Dropped > 0 {
		log.Warnf("Dropped %d of %d rows with an unparsable date", batch.Dropped, batch.Rows)
	}
	return batch, nil
}

func parse(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func count(s string) float64 {
	v, _ := parse(s)
	return v
}

func optional(s string) *float64 {
	v, ok := parse(s)
	if !ok {
		return nil
	}
	return &v
}
