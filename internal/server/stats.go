package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ferrodb/ferrodb/internal/page"
)

// StatsSource reports buffer pool occupancy for the stats endpoint. It is
// satisfied by *page.BufferedManager; callers running an UnlimitedManager
// simply don't wire a StatsServer.
type StatsSource interface {
	Stats() page.Stats
}

// StatsServer exposes /healthz and /stats over plain HTTP.
type StatsServer struct {
	addr   string
	source StatsSource
}

// NewStatsServer constructs a StatsServer bound to addr, reporting source's
// occupancy.
func NewStatsServer(addr string, source StatsSource) *StatsServer {
	return &StatsServer{addr: addr, source: source}
}

func (s *StatsServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.source.Stats())
	})

	return r
}

// ListenAndServe blocks serving the stats router until the process exits or
// the listener errors.
func (s *StatsServer) ListenAndServe() error {
	return http.ListenAndServe(s.addr, s.router())
}
