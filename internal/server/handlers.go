package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/owidviz/covidscope/internal/utils"
	"github.com/owidviz/covidscope/pkg/chart"
	"github.com/owidviz/covidscope/pkg/geo"
	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/scale"
	"github.com/owidviz/covidscope/pkg/selection"
	"github.com/owidviz/covidscope/pkg/timebucket"
	"github.com/owidviz/covidscope/pkg/views"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Log.Debugf("Could not write response: %v", err)
	}
}

func eventError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, selection.ErrClosed):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (selection.Snapshot, bool) {
	snap, err := s.Session.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return snap, false
	}
	return snap, true
}

// dispatch applies ev and answers with the re-rendered dashboard.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, ev selection.Event) {
	snap, err := s.Session.Dispatch(r.Context(), ev)
	if err != nil {
		eventError(w, err)
		return
	}
	writeJSON(w, views.Render(snap))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w, r); ok {
		writeJSON(w, views.Render(snap))
	}
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w, r); ok {
		writeJSON(w, snap.Entities)
	}
}

type SelectRequest struct {
	Entity string `json:"entity"`
	Code   string `json:"code"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, selection.EntityPicked{Selector: observation.Selector{Entity: req.Entity, Code: req.Code}})
}

type SliderRequest struct {
	Index int `json:"index"`
}

func (s *Server) handleSlider(w http.ResponseWriter, r *http.Request) {
	var req SliderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, selection.SliderMoved{Index: req.Index})
}

// BrushRequest is either a pixel extent over an overview chart of the given
// width, or an explicit month range.
type BrushRequest struct {
	X0    *float64          `json:"x0"`
	X1    *float64          `json:"x1"`
	Width float64           `json:"width"`
	From  *timebucket.Month `json:"from"`
	To    *timebucket.Month `json:"to"`
}

func (s *Server) handleBrush(w http.ResponseWriter, r *http.Request) {
	var req BrushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	switch {
	case req.From != nil && req.To != nil:
		s.dispatch(w, r, selection.BrushMonths{From: *req.From, To: *req.To})
	case req.X0 != nil && req.X1 != nil && req.Width > 0:
		s.dispatch(w, r, selection.BrushEnded{X0: *req.X0, X1: *req.X1, Layout: scale.DefaultLayout(req.Width)})
	default:
		http.Error(w, "brush needs x0, x1 and width, or from and to", http.StatusBadRequest)
	}
}

func (s *Server) handleClearBrush(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, selection.BrushCleared{})
}

type HighlightRequest struct {
	Pointer string           `json:"pointer"`
	Month   timebucket.Month `json:"month"`
	Active  bool             `json:"active"`
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req HighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, selection.Hovered{Pointer: req.Pointer, Month: req.Month, Active: req.Active})
}

// handleTooltip answers ?month=2020-03 (bar charts, &chart=boosters for the
// booster chart) or ?code=FRA&name=France (map).
func (s *Server) handleTooltip(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	if code := q.Get("code"); code != "" {
		writeJSON(w, views.CountryTooltip(snap, code, q.Get("name")))
		return
	}
	m, err := timebucket.Parse(q.Get("month"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if q.Get("chart") == selection.ChartBoosters {
		writeJSON(w, views.BoosterTooltip(snap, m))
		return
	}
	writeJSON(w, views.MonthTooltip(snap, m))
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	b, err := s.loadBoundaries(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	cells := snap.Join.Resolve(b, snap.MapMonth(), scale.CaseColors)
	body, err := geo.Choropleth(b, cells)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(body)
}

func (s *Server) handleContinents(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w, r); ok {
		writeJSON(w, views.Continents(snap.Observations))
	}
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w, r); ok {
		writeJSON(w, views.Compare(snap, s.Groups))
	}
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w, r); ok {
		writeJSON(w, views.Trends(snap.Observations, s.TrendCountries, s.Axis))
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	format, err := chart.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	d := views.Render(snap)
	switch name := r.PathValue("name"); name {
	case selection.ChartCases:
		err = chart.Bars(&buf, d.Cases, format)
	case selection.ChartDeaths:
		err = chart.Bars(&buf, d.Deaths, format)
	case selection.ChartVaccinations:
		err = chart.Bars(&buf, d.Vaccinations, format)
	case selection.ChartBoosters:
		err = chart.Bars(&buf, d.Boosters, format)
	case "overview":
		err = chart.Bars(&buf, views.Compare(snap, s.Groups).Overview, format)
	case "trends":
		err = chart.Trends(&buf, views.Trends(snap.Observations, s.TrendCountries, s.Axis), format)
	default:
		http.Error(w, "unknown chart "+name, http.StatusNotFound)
		return
	}
	if errors.Is(err, chart.ErrNoData) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(buf.Bytes())
}
