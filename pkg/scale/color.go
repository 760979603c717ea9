package scale

import "sort"

// Reds6 is the six-class ColorBrewer Reds scheme.
var Reds6 = []string{"#fee5d9", "#fcbba1", "#fc9272", "#fb6a4a", "#de2d26", "#a50f15"}

// NoDataColor fills regions without a value.
const NoDataColor = "#ffffff"

// Threshold maps values to len(Breaks)+1 colors: values below Breaks[0] get
// Colors[0], values at or above the last break get the last color.
type Threshold struct {
	Breaks []float64 `json:"breaks"`
	Colors []string  `json:"colors"`
	NoData string    `json:"no_data"`
}

// CaseColors is the monthly new-cases map scale.
var CaseColors = Threshold{
	Breaks: []float64{1e4, 1e5, 5e5, 1e6, 1e7},
	Colors: Reds6,
	NoData: NoDataColor,
}

func (t Threshold) Color(v float64) string {
	if len(t.Colors) == 0 {
		return t.NoData
	}
	i := sort.Search(len(t.Breaks), func(i int) bool { return t.Breaks[i] > v })
	if i >= len(t.Colors) {
		i = len(t.Colors) - 1
	}
	return t.Colors[i]
}

// Fill is Color for a looked-up value, NoData on a miss.
func (t Threshold) Fill(v float64, ok bool) string {
	if !ok {
		return t.NoData
	}
	return t.Color(v)
}

// Legend pairs each color with the lower bound of its class.
func (t Threshold) Legend() []LegendEntry {
	out := make([]LegendEntry, 0, len(t.Colors))
	for i, c := range t.Colors {
		var lo float64
		if i > 0 && i-1 < len(t.Breaks) {
			lo = t.Breaks[i-1]
		}
		out = append(out, LegendEntry{From: lo, Color: c})
	}
	return out
}

type LegendEntry struct {
	From  float64 `json:"from"`
	Color string  `json:"color"`
}
