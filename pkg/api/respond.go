package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"skirace/pkg/domainerr"
)

// kindStatus maps a domainerr.Kind to its HTTP status, the single
// lookup table every handler funnels through instead of re-deciding the
// mapping per call site.
var kindStatus = map[domainerr.Kind]int{
	domainerr.Validation: http.StatusUnprocessableEntity,
	domainerr.Auth:       http.StatusUnauthorized,
	domainerr.NotFound:   http.StatusNotFound,
	domainerr.Conflict:   http.StatusConflict,
	domainerr.Dependency: http.StatusBadGateway,
	domainerr.Internal:   http.StatusInternalServerError,
}

type errorBody struct {
	Detail string `json:"detail"`
}

// writeError maps err to its HTTP status via kindStatus and writes
// {"detail": "..."}. INTERNAL and DEPENDENCY errors are logged with their
// cause; others are considered ordinary request-shaped failures.
func writeError(w http.ResponseWriter, err error) {
	derr, ok := domainerr.As(err)
	if !ok {
		log.Error().Err(err).Msg("unclassified error reached the http boundary")
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "internal error"})
		return
	}

	status, ok := kindStatus[derr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	switch derr.Kind {
	case domainerr.Internal:
		log.Error().Err(derr.Cause).Str("detail", derr.Detail).Msg("internal error")
	case domainerr.Dependency:
		log.Error().Err(derr.Cause).Str("detail", derr.Detail).Msg("dependency error")
	}

	writeJSON(w, status, errorBody{Detail: derr.Detail})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode response body")
	}
}

func decodeJSON(r *http.Request, out interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return domainerr.Validationf("request: malformed json body: %v", err)
	}
	return nil
}
