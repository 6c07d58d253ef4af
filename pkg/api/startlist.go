package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skirace/pkg/domainerr"
)

func (s *Server) handleListStartlists(w http.ResponseWriter, r *http.Request) {
	ss, err := s.orchestrator.ListStartlists(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ss)
}

func (s *Server) handleGetStartlist(w http.ResponseWriter, r *http.Request) {
	sl, err := s.orchestrator.GetStartlist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sl)
}

func (s *Server) handleDeleteStartlist(w http.ResponseWriter, r *http.Request) {
	if err := s.orchestrator.DeleteStartlist(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGenerateStartlist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EventID string `json:"event_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.EventID == "" {
		writeError(w, domainerr.Validationf("startlist: event_id is required"))
		return
	}

	sl, err := s.orchestrator.GenerateStartlistForEvent(r.Context(), body.EventID, userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/startlists/"+sl.ID)
	writeJSON(w, http.StatusCreated, sl)
}
