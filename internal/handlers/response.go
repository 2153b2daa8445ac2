package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/stanstork/crewdispatch/internal/repository"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeRunError reports a batch that stopped on an error, keeping the
// cause and the work completed before it.
func writeRunError(w http.ResponseWriter, msg string, err error, report interface{}) {
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"error":   msg,
		"details": err.Error(),
		"report":  report,
	})
}

// pathID reads a positive integer route variable.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(mux.Vars(r)[name]), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryLimit returns the limit query parameter, or def when it is absent or
// not a positive integer.
func queryLimit(r *http.Request, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}

func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// storeErrorStatus maps repository sentinels to HTTP status codes.
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, repository.ErrInvalidReference):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
