package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"recordvault.org/internal/auth"
)

func (a *API) handleUserByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusBadRequest, "missing user id")
		return
	}
	user, err := a.dir.FindByID(r.Context(), id)
	if err != nil {
		a.writeDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleUserByUsername(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	username := strings.TrimPrefix(r.URL.Path, "/v1/users/username/")
	if username == "" {
		writeError(w, r, http.StatusBadRequest, "missing username")
		return
	}
	user, err := a.dir.FindByUsername(r.Context(), username)
	if err != nil {
		a.writeDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) writeDirectoryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "user not found")
	case errors.Is(err, auth.ErrDirectoryUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "user directory unavailable")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
