package geo

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Choropleth writes the resolved cells into the features' properties and
// returns a new FeatureCollection. cells must come from Resolve on the same
// boundaries.
func Choropleth(b *Boundaries, cells []Cell) ([]byte, error) {
	if len(cells) != len(b.features) {
		return nil, fmt.Errorf("got %d cells for %d features", len(cells), len(b.features))
	}

	var out bytes.Buffer
	out.WriteString(`{"type":"FeatureCollection","features":[`)
	for i, f := range b.features {
		feat, err := annotate([]byte(f.Raw), cells[i])
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", f.ID, err)
		}
		if i > 0 {
			out.WriteByte(',')
		}
		out.Write(feat)
	}
	out.WriteString(`]}`)
	return out.Bytes(), nil
}

func annotate(feat []byte, c Cell) ([]byte, error) {
	var err error
	if !gjson.GetBytes(feat, "properties").IsObject() {
		if feat, err = sjson.SetRawBytes(feat, "properties", []byte(`{}`)); err != nil {
			return nil, err
		}
	}
	props := []struct {
		path  string
		value interface{}
	}{
		{"properties.month", c.Month.Key()},
		{"properties.fill", c.Fill},
		{"properties.cases", nullable(c.Cases)},
		{"properties.deaths", nullable(c.Deaths)},
		{"properties.vaccinations", nullable(c.Vaccinations)},
	}
	for _, p := range props {
		if feat, err = sjson.SetBytes(feat, p.path, p.value); err != nil {
			return nil, err
		}
	}
	return feat, nil
}

func nullable(v Value) interface{} {
	if !v.OK {
		return nil
	}
	return v.V
}
