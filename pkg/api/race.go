package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skirace/pkg/domain"
)

func (s *Server) handleListRaces(w http.ResponseWriter, r *http.Request) {
	races, err := s.orchestrator.ListRaces(r.Context(), r.URL.Query().Get("eventId"), r.URL.Query().Get("raceplanId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, races)
}

func (s *Server) handleCreateRace(w http.ResponseWriter, r *http.Request) {
	var rc domain.Race
	if err := decodeJSON(r, &rc); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.orchestrator.CreateRace(r.Context(), &rc)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/races/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetRace(w http.ResponseWriter, r *http.Request) {
	rc, err := s.orchestrator.GetRace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (s *Server) handleUpdateRace(w http.ResponseWriter, r *http.Request) {
	var rc domain.Race
	if err := decodeJSON(r, &rc); err != nil {
		writeError(w, err)
		return
	}
	rc.ID = chi.URLParam(r, "id")

	if err := s.orchestrator.UpdateRace(r.Context(), &rc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (s *Server) handleDeleteRace(w http.ResponseWriter, r *http.Request) {
	if err := s.orchestrator.DeleteRace(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
