package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skirace/pkg/domain"
	"skirace/pkg/domainerr"
)

func (s *Server) handleListRaceplans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.orchestrator.ListRaceplans(r.Context(), r.URL.Query().Get("eventId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleCreateRaceplan(w http.ResponseWriter, r *http.Request) {
	var p domain.Raceplan
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.orchestrator.CreateRaceplan(r.Context(), &p)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/raceplans/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetRaceplan(w http.ResponseWriter, r *http.Request) {
	p, err := s.orchestrator.GetRaceplan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateRaceplan(w http.ResponseWriter, r *http.Request) {
	writeError(w, domainerr.Validationf("raceplan: no mutable fields; update its races instead"))
}

func (s *Server) handleDeleteRaceplan(w http.ResponseWriter, r *http.Request) {
	if err := s.orchestrator.DeleteRaceplan(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleValidateRaceplan(w http.ResponseWriter, r *http.Request) {
	violation, err := s.orchestrator.ValidateRaceplan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if violation == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "violation", "detail": violation})
}

func (s *Server) handleGenerateRaceplan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EventID string `json:"event_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.EventID == "" {
		writeError(w, domainerr.Validationf("raceplan: event_id is required"))
		return
	}

	plan, err := s.orchestrator.GenerateRaceplanForEvent(r.Context(), body.EventID, userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/raceplans/"+plan.ID)
	writeJSON(w, http.StatusCreated, plan)
}
