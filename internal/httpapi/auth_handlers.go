package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"recordvault.org/internal/auth"
)

// loginFailureMessage is deliberately identical for unknown usernames and
// wrong passwords.
const loginFailureMessage = "Username or password may be incorrect. Please try again"

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := a.decodeValid(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	pair, err := a.auth.Login(r.Context(), auth.Credential{Username: req.Username, Secret: req.Password})
	if err != nil {
		a.writeAuthError(w, r, err)
		return
	}
	a.audit.Event(r.Context(), "auth.login", zap.String("username", req.Username))
	writeJSON(w, http.StatusOK, pair)
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req signupRequest
	if err := a.decodeValid(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var role auth.RoleName
	if req.Role != "" {
		parsed, err := auth.ParseRoleName(req.Role)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "unknown role")
			return
		}
		role = parsed
	}
	user, err := a.auth.SignUpCustomer(r.Context(), req.Username, req.Password, role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAlreadyExists):
			writeError(w, r, http.StatusConflict, "username already taken")
		case errors.Is(err, auth.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrDirectoryUnavailable):
			writeError(w, r, http.StatusServiceUnavailable, "user directory unavailable")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}
	a.audit.Event(r.Context(), "auth.signup", zap.String("username", user.Username))
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	a.audit.Event(r.Context(), "auth.logout")
	writeJSON(w, http.StatusOK, a.auth.Logout())
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req refreshRequest
	if err := a.decodeValid(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	pair, err := a.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		a.writeAuthError(w, r, err)
		return
	}
	a.audit.Event(r.Context(), "auth.refresh")
	writeJSON(w, http.StatusOK, pair)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	authCtx, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username": authCtx.Username,
		"role":     authCtx.Role,
	})
}

func (a *API) handleRolesList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	roles, err := a.roles.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

func (a *API) handleRoleByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/v1/roles/name/")
	name, err := auth.ParseRoleName(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unknown role")
		return
	}
	role, err := a.roles.RoleByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "role not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, role)
}

// writeAuthError maps issuer failures onto transport responses. Unauthorized
// is reported with one uniform message regardless of which factor failed.
func (a *API) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, loginFailureMessage)
	case errors.Is(err, auth.ErrTokenExpired):
		writeError(w, r, http.StatusUnauthorized, "token expired")
	case errors.Is(err, auth.ErrTokenInvalid):
		writeError(w, r, http.StatusUnauthorized, "token invalid")
	case errors.Is(err, auth.ErrDirectoryUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "user directory unavailable")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (a *API) decodeValid(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	return a.validate.Struct(dst)
}
