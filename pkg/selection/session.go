package selection

import (
	"context"
	"errors"
	"sync"

	"github.com/owidviz/covidscope/pkg/geo"
	"github.com/owidviz/covidscope/pkg/highlight"
	"github.com/owidviz/covidscope/pkg/loader"
	"github.com/owidviz/covidscope/pkg/observation"
	"github.com/owidviz/covidscope/pkg/scale"
	"github.com/owidviz/covidscope/pkg/timebucket"
	"github.com/owidviz/covidscope/pkg/window"
)

var ErrClosed = errors.New("session closed")

// Names of the linked monthly charts.
const (
	ChartCases        = "cases"
	ChartDeaths       = "deaths"
	ChartVaccinations = "vaccinations"
	ChartBoosters     = "boosters"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Config holds everything a Session needs.
type Config struct {
	Provider loader.Provider    // required
	Window   window.Window      // zero = window.Analysis
	Metric   observation.Metric // case column for bars and map; "" = new_cases
	Log      Logger             // optional; nil = no logging
}

type request struct {
	ev    Event
	reply chan reply
}

type reply struct {
	snap Snapshot
	err  error
}

// Session owns the selection state and every derived aggregate. All of it
// is touched only by the Run goroutine; loads run elsewhere and come back
// as events.
type Session struct {
	provider loader.Provider
	window   window.Window
	metric   observation.Metric
	log      Logger

	requests chan request
	done     chan struct{}
	ctx      context.Context
	vaccines *vaccinationCache

	state       State
	cases       []observation.Observation
	entities    []string
	casesStatus Status
	casesErr    string
	primary     MonthlySeries
	overview    MonthlySeries
	vaccination VaccinationSeries
	join        geo.Join
	slider      scale.Slider
	highlights  *highlight.Coordinator

	// generation counts reloads. Loads carry the generation they were
	// issued in and are dropped once it moves on.
	generation uint64
	joinGen    uint64
}

func New(cfg Config) *Session {
	s := &Session{
		provider: cfg.Provider,
		window:   cfg.Window,
		metric:   cfg.Metric,
		log:      cfg.Log,
		requests: make(chan request),
		done:     make(chan struct{}),
		ctx:      context.Background(),
	}
	if s.window.Start.IsZero() {
		s.window = window.Analysis
	}
	if s.metric == "" {
		s.metric = observation.NewCases
	}
	if s.log == nil {
		s.log = nopLogger{}
	}
	s.vaccines = newVaccinationCache(s.provider, s.window)
	s.state = NewState()
	s.casesStatus = StatusPending
	s.vaccination = pendingVaccinations()
	s.primary = NewMonthlySeries(nil, s.metric)
	s.overview = NewMonthlySeries(nil, observation.NewCasesPerMillion)
	s.join = geo.NewJoin(nil, nil, s.metric)
	s.slider = scale.NewSlider(timebucket.Of(s.window.Start), timebucket.Of(s.window.End))
	s.highlights = highlight.New()
	return s
}

// Run starts the initial loads and processes events until ctx is done.
// It must be called once.
func (s *Session) Run(ctx context.Context) error {
	s.ctx = ctx
	defer close(s.done)

	s.loadCases()
	s.requestVaccinations(s.state.Version)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-s.requests:
			var err error
			if req.ev != nil {
				err = req.ev.apply(s)
			}
			if req.reply != nil {
				req.reply <- reply{snap: s.snapshot(), err: err}
			}
		}
	}
}

// Dispatch applies ev and returns the resulting snapshot.
func (s *Session) Dispatch(ctx context.Context, ev Event) (Snapshot, error) {
	req := request{ev: ev, reply: make(chan reply, 1)}
	select {
	case s.requests <- req:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-s.done:
		return Snapshot{}, ErrClosed
	}
	select {
	case r := <-req.reply:
		return r.snap, r.err
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-s.done:
		return Snapshot{}, ErrClosed
	}
}

// Snapshot returns the current state without changing it.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	return s.Dispatch(ctx, nil)
}

// Post queues ev without waiting for it to be applied.
func (s *Session) Post(ev Event) {
	go s.post(ev)
}

func (s *Session) post(ev Event) {
	select {
	case s.requests <- request{ev: ev}:
	case <-s.done:
	}
}

// Reload re-reads both datasets, e.g. after the cache was refreshed. The
// current views stay in place until the new data arrives.
type Reload struct{}

func (Reload) apply(s *Session) error {
	s.generation++
	s.vaccines = newVaccinationCache(s.provider, s.window)
	s.loadCases()
	s.requestVaccinations(s.state.Version)
	return nil
}

func (s *Session) loadCases() {
	ctx, gen := s.ctx, s.generation
	go func() {
		batch, err := s.provider.Observations(ctx, loader.Cases)
		s.post(casesLoaded{generation: gen, batch: batch, err: err})
	}()
}

func (s *Session) requestVaccinations(version uint64) {
	ctx, gen, cache := s.ctx, s.generation, s.vaccines
	go func() {
		all, err := cache.get(ctx)
		s.post(vaccinationsLoaded{version: version, generation: gen, all: all, err: err})
	}()
}

// reaggregateCases rebuilds the primary series for the current state and
// swaps in fresh marks for the case and death charts.
func (s *Session) reaggregateCases() {
	if s.casesStatus != StatusReady {
		return
	}
	s.primary = NewMonthlySeries(s.state.caseFilter(s.cases), s.metric)
	s.installMarks(ChartCases, s.primary.Months)
	s.installMarks(ChartDeaths, s.primary.Months)
}

func (s *Session) installMarks(name string, months scale.Band[timebucket.Month]) {
	s.highlights.Replace(highlight.NewMarks(name, months.Keys()))
}

// vaccinationCache fetches the vaccination dataset once and shares it
// between requests. Failed fetches are not cached. Only load goroutines
// take mu; a reload replaces the whole cache.
type vaccinationCache struct {
	provider loader.Provider
	window   window.Window

	mu  sync.Mutex
	obs []observation.Observation
}

func newVaccinationCache(p loader.Provider, w window.Window) *vaccinationCache {
	return &vaccinationCache{provider: p, window: w}
}

func (c *vaccinationCache) get(ctx context.Context) ([]observation.Observation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.obs != nil {
		return c.obs, nil
	}
	batch, err := c.provider.Observations(ctx, loader.Vaccinations)
	if err != nil {
		return nil, err
	}
	c.obs = window.Filter(batch.Observations, c.window)
	return c.obs, nil
}
