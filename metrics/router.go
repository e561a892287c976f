package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nstehr/uburu/team"
)

// RosterSource is the read side of the team registry.
type RosterSource interface {
	Roster() []string
	Timeline() []team.TimelineEntry
}

type rosterResponse struct {
	Roster   []string             `json:"roster"`
	Timeline []team.TimelineEntry `json:"timeline"`
}

// NewRouter builds the admin HTTP surface. mcp is mounted at /mcp when non-nil.
func NewRouter(roster RosterSource, mcp http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/roster", func(w http.ResponseWriter, _ *http.Request) {
		resp := rosterResponse{Roster: roster.Roster(), Timeline: roster.Timeline()}
		if resp.Roster == nil {
			resp.Roster = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
	if mcp != nil {
		r.Handle("/mcp", mcp)
	}
	return r
}
