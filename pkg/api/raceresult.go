package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"skirace/pkg/domain"
)

func (s *Server) handleListRaceResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.orchestrator.ListRaceResultsByRace(r.Context(), chi.URLParam(r, "raceID"), r.URL.Query().Get("timingPoint"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleGetRaceResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.orchestrator.GetRaceResult(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpdateRaceResult(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status domain.ResultStatus `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.orchestrator.UpdateRaceResult(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteRaceResult(w http.ResponseWriter, r *http.Request) {
	if err := s.orchestrator.DeleteRaceResult(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
