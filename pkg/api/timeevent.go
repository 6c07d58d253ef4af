package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skirace/pkg/domain"
)

func (s *Server) handleListTimeEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.orchestrator.ListTimeEvents(r.Context(), r.URL.Query().Get("raceId"), r.URL.Query().Get("timingPoint"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleCreateTimeEvent(w http.ResponseWriter, r *http.Request) {
	var ev domain.TimeEvent
	if err := decodeJSON(r, &ev); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.orchestrator.IngestTimeEvent(r.Context(), &ev, userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/time-events/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTimeEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.orchestrator.GetTimeEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleDeleteTimeEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.orchestrator.DeleteTimeEvent(r.Context(), chi.URLParam(r, "id"), userIDFromContext(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
