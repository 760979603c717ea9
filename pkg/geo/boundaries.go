package geo

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var ErrNotFeatureCollection = errors.New("not a GeoJSON FeatureCollection")

// Feature is one country outline. ID is the ISO-3166 alpha-3 code.
type Feature struct {
	ID   string
	Name string
	Raw  string
}

// Boundaries is a parsed FeatureCollection in document order.
type Boundaries struct {
	features []Feature
	byID     map[string]int
}

// ParseBoundaries indexes a FeatureCollection by feature id. Features
// without an id are kept (they are drawn with no data) but not indexed.
func ParseBoundaries(data []byte) (*Boundaries, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrNotFeatureCollection)
	}
	doc := gjson.ParseBytes(data)
	if doc.Get("type").String() != "FeatureCollection" {
		return nil, ErrNotFeatureCollection
	}
	features := doc.Get("features")
	if !features.IsArray() {
		return nil, fmt.Errorf("%w: features is not an array", ErrNotFeatureCollection)
	}

	b := &Boundaries{byID: make(map[string]int)}
	features.ForEach(func(_, f gjson.Result) bool {
		feat := Feature{
			ID:   f.Get("id").String(),
			Name: f.Get("properties.name").String(),
			Raw:  f.Raw,
		}
		if feat.ID != "" {
			if _, dup := b.byID[feat.ID]; !dup {
				b.byID[feat.ID] = len(b.features)
			}
		}
		b.features = append(b.features, feat)
		return true
	})
	return b, nil
}

func (b *Boundaries) Len() int { return len(b.features) }

func (b *Boundaries) Features() []Feature {
	return append([]Feature(nil), b.features...)
}

func (b *Boundaries) Feature(id string) (Feature, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Feature{}, false
	}
	return b.features[i], true
}
