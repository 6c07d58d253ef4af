// Package api wires the chi router directly to orchestrator calls, one
// handler file per resource.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"skirace/pkg/adapters"
	"skirace/pkg/orchestrator"
)

// Server holds everything a handler needs: the orchestrator and the users
// adapter for bearer-token authorization.
type Server struct {
	orchestrator *orchestrator.Orchestrator
	users        *adapters.UsersAdapter
}

func NewServer(o *orchestrator.Orchestrator, users *adapters.UsersAdapter) *Server {
	return &Server{orchestrator: o, users: users}
}

// Router builds the chi router for the full HTTP surface, with a
// RequestID/RealIP/Logger/Recoverer middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", s.handlePing)
	r.Get("/ready", s.handleReady)

	r.Route("/raceplans", func(r chi.Router) {
		r.Get("/", s.handleListRaceplans)
		r.With(s.requireAuth()).Post("/", s.handleCreateRaceplan)
		r.With(s.requireAuth()).Post("/generate-raceplan-for-event", s.handleGenerateRaceplan)
		r.Get("/{id}", s.handleGetRaceplan)
		r.With(s.requireAuth()).Put("/{id}", s.handleUpdateRaceplan)
		r.With(s.requireAuth()).Delete("/{id}", s.handleDeleteRaceplan)
		r.Get("/{id}/validate", s.handleValidateRaceplan)
	})

	r.Route("/startlists", func(r chi.Router) {
		r.Get("/", s.handleListStartlists)
		r.With(s.requireAuth()).Post("/generate-startlist-for-event", s.handleGenerateStartlist)
		r.Get("/{id}", s.handleGetStartlist)
		r.With(s.requireAuth()).Delete("/{id}", s.handleDeleteStartlist)
	})

	r.Route("/races", func(r chi.Router) {
		r.Get("/", s.handleListRaces)
		r.With(s.requireAuth()).Post("/", s.handleCreateRace)
		r.Get("/{id}", s.handleGetRace)
		r.With(s.requireAuth()).Put("/{id}", s.handleUpdateRace)
		r.With(s.requireAuth()).Delete("/{id}", s.handleDeleteRace)

		r.Route("/{raceID}/start-entries", func(r chi.Router) {
			r.Get("/", s.handleListStartEntries)
			r.With(s.requireAuth()).Post("/", s.handleCreateStartEntry)
			r.Get("/{id}", s.handleGetStartEntry)
			r.With(s.requireAuth()).Put("/{id}", s.handleUpdateStartEntry)
			r.With(s.requireAuth()).Delete("/{id}", s.handleDeleteStartEntry)
		})

		r.Route("/{raceID}/race-results", func(r chi.Router) {
			r.Get("/", s.handleListRaceResults)
			r.Get("/{id}", s.handleGetRaceResult)
			r.With(s.requireAuth()).Put("/{id}", s.handleUpdateRaceResult)
			r.With(s.requireAuth()).Delete("/{id}", s.handleDeleteRaceResult)
		})
	})

	r.Route("/time-events", func(r chi.Router) {
		r.Get("/", s.handleListTimeEvents)
		r.With(s.requireAuth()).Post("/", s.handleCreateTimeEvent)
		r.Get("/{id}", s.handleGetTimeEvent)
		r.With(s.requireAuth()).Delete("/{id}", s.handleDeleteTimeEvent)
	})

	return r
}
