package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/owidviz/covidscope/internal/utils"
	"github.com/owidviz/covidscope/pkg/geo"
	"github.com/owidviz/covidscope/pkg/loader"
	"github.com/owidviz/covidscope/pkg/selection"
	"github.com/owidviz/covidscope/pkg/views"
	"github.com/owidviz/covidscope/pkg/window"
)

type Config struct {
	Session        *selection.Session
	Provider       loader.Provider // boundaries for /api/map
	Groups         views.Groups
	TrendCountries []string
	Axis           window.Window // x domain of the trend chart
	Username       string
	Password       string
}

type Server struct {
	Config

	mu         sync.Mutex
	boundaries *geo.Boundaries
}

func New(cfg Config) *Server {
	if len(cfg.Groups.High) == 0 && len(cfg.Groups.Low) == 0 {
		cfg.Groups = views.DefaultGroups
	}
	if len(cfg.TrendCountries) == 0 {
		cfg.TrendCountries = views.DefaultTrendCountries
	}
	if cfg.Axis.Start.IsZero() {
		cfg.Axis = window.TrendAxis
	}
	return &Server{Config: cfg}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/dashboard", s.basicAuth(s.handleDashboard))
	mux.HandleFunc("GET /api/entities", s.basicAuth(s.handleEntities))
	mux.HandleFunc("POST /api/select", s.basicAuth(s.handleSelect))
	mux.HandleFunc("POST /api/slider", s.basicAuth(s.handleSlider))
	mux.HandleFunc("POST /api/brush", s.basicAuth(s.handleBrush))
	mux.HandleFunc("DELETE /api/brush", s.basicAuth(s.handleClearBrush))
	mux.HandleFunc("POST /api/highlight", s.basicAuth(s.handleHighlight))
	mux.HandleFunc("GET /api/tooltip", s.basicAuth(s.handleTooltip))
	mux.HandleFunc("GET /api/map", s.basicAuth(s.handleMap))
	mux.HandleFunc("GET /api/continents", s.basicAuth(s.handleContinents))
	mux.HandleFunc("GET /api/compare", s.basicAuth(s.handleCompare))
	mux.HandleFunc("GET /api/trends", s.basicAuth(s.handleTrends))
	mux.HandleFunc("GET /chart/{name}", s.basicAuth(s.handleChart))

	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		utils.Log.Infof("Starting server on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// loadBoundaries parses the boundaries once. A failed fetch is retried on
// the next request.
func (s *Server) loadBoundaries(ctx context.Context) (*geo.Boundaries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boundaries != nil {
		return s.boundaries, nil
	}
	if s.Provider == nil {
		return nil, errors.New("no boundaries provider")
	}
	raw, err := s.Provider.Boundaries(ctx)
	if err != nil {
		return nil, err
	}
	b, err := geo.ParseBoundaries(raw)
	if err != nil {
		return nil, err
	}
	s.boundaries = b
	return b, nil
}
