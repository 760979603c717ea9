// Package chart draws the view models of package views as SVG or PNG.
package chart

import (
	"errors"
	"fmt"
	"io"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/owidviz/covidscope/pkg/views"
)

// ErrNoData is returned for a chart without a single value to draw.
var ErrNoData = errors.New("chart has no data")

type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case SVG, PNG:
		return f, nil
	case "":
		return SVG, nil
	default:
		return "", fmt.Errorf("unknown chart format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() gochart.RendererProvider {
	if f == PNG {
		return gochart.PNG
	}
	return gochart.SVG
}

var (
	barColor       = drawing.ColorFromHex("#4682b4")
	highlightColor = drawing.ColorFromHex("#ffa500")
	// Same order as views.DefaultTrendCountries.
	linePalette = []drawing.Color{
		drawing.ColorFromHex("#e41a1c"),
		drawing.ColorFromHex("#377eb8"),
		drawing.ColorFromHex("#4daf4a"),
		drawing.ColorFromHex("#984ea3"),
		drawing.ColorFromHex("#ff7f00"),
		drawing.ColorFromHex("#a65628"),
	}
)

const (
	barWidth   = 18
	barSpacing = 6
	height     = 400
	minWidth   = 640
)

// Bars renders a monthly bar chart. Highlighted months are drawn orange.
func Bars(w io.Writer, c views.BarChart, f Format) error {
	if len(c.Bars) == 0 {
		return fmt.Errorf("%s: %w", c.Name, ErrNoData)
	}
	bc := gochart.BarChart{
		Title:      c.Title,
		Height:     height,
		Width:      max(minWidth, len(c.Bars)*(barWidth+barSpacing)+120),
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.Style{FontSize: 7},
		YAxis: gochart.YAxis{
			Range:          yRange(c.Domain.Max),
			ValueFormatter: countFormatter,
		},
	}
	for _, b := range c.Bars {
		fill := barColor
		if b.Highlighted {
			fill = highlightColor
		}
		bc.Bars = append(bc.Bars, gochart.Value{
			Label: b.Month.Key(),
			Value: b.Value,
			Style: gochart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 1},
		})
	}
	if err := bc.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render %s: %w", c.Name, err)
	}
	return nil
}

// Trends renders the daily trend lines over the chart's full axis, even
// where there is no data.
func Trends(w io.Writer, t views.TrendChart, f Format) error {
	ch := gochart.Chart{
		Title:      "Daily New Cases (7-day smoothed)",
		Width:      960,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01"),
			Range: &gochart.ContinuousRange{
				Min: gochart.TimeToFloat64(t.From),
				Max: gochart.TimeToFloat64(t.To),
			},
		},
		YAxis: gochart.YAxis{
			Range:          yRange(t.Domain.Max),
			ValueFormatter: countFormatter,
		},
	}
	for i, s := range t.Series {
		if len(s.Points) == 0 {
			continue
		}
		ts := gochart.TimeSeries{
			Name:  s.Country,
			Style: gochart.Style{StrokeColor: linePalette[i%len(linePalette)], StrokeWidth: 1.5},
		}
		for _, p := range s.Points {
			ts.XValues = append(ts.XValues, p.Date)
			ts.YValues = append(ts.YValues, p.Value)
		}
		ch.Series = append(ch.Series, ts)
	}
	if len(ch.Series) == 0 {
		return fmt.Errorf("trends: %w", ErrNoData)
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	if err := ch.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render trends: %w", err)
	}
	return nil
}

// yRange anchors the axis at zero. go-chart refuses a zero-height range, so
// an all-zero chart gets a unit axis.
func yRange(hi float64) *gochart.ContinuousRange {
	if hi <= 0 {
		hi = 1
	}
	return &gochart.ContinuousRange{Min: 0, Max: hi}
}

func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return views.Count(f, true)
	}
	return fmt.Sprint(v)
}
