package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skirace/pkg/domain"
)

func (s *Server) handleListStartEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.orchestrator.ListStartEntriesByRace(r.Context(), chi.URLParam(r, "raceID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateStartEntry(w http.ResponseWriter, r *http.Request) {
	var e domain.StartEntry
	if err := decodeJSON(r, &e); err != nil {
		writeError(w, err)
		return
	}
	e.RaceID = chi.URLParam(r, "raceID")
	created, err := s.orchestrator.CreateStartEntry(r.Context(), &e)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/races/"+e.RaceID+"/start-entries/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetStartEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.orchestrator.GetStartEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateStartEntry(w http.ResponseWriter, r *http.Request) {
	var e domain.StartEntry
	if err := decodeJSON(r, &e); err != nil {
		writeError(w, err)
		return
	}
	e.ID = chi.URLParam(r, "id")
	e.RaceID = chi.URLParam(r, "raceID")
	if err := s.orchestrator.UpdateStartEntry(r.Context(), &e, userIDFromContext(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteStartEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.orchestrator.DeleteStartEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
