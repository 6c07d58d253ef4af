package api

import "net/http"

// handlePing is liveness: the process is up, no dependency checked.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady is readiness: the repository must be reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.orchestrator.Store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
