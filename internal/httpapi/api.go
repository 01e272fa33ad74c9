package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"recordvault.org/internal/audit"
	"recordvault.org/internal/auth"
	"recordvault.org/internal/obs"
)

const serviceName = "recordvault-api"

// ReadyProbe checks backing dependencies for /readyz.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP boundary adapter: it translates headers and bodies to and
// from the auth core and maps its decisions onto transport responses.
type API struct {
	mux      *http.ServeMux
	auth     *auth.Service
	engine   *auth.Engine
	dir      auth.Directory
	roles    auth.RoleRegistry
	probe    ReadyProbe
	audit    *audit.Logger
	log      *zap.Logger
	validate *validator.Validate
	version  string
}

// New wires the routes. Every handler is registered through protect so the
// authorization engine sees each operation exactly once.
func New(svc *auth.Service, engine *auth.Engine, dir auth.Directory, roles auth.RoleRegistry, probe ReadyProbe, version string, log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}
	a := &API{
		mux:      http.NewServeMux(),
		auth:     svc,
		engine:   engine,
		dir:      dir,
		roles:    roles,
		probe:    probe,
		audit:    audit.New(log),
		log:      log,
		validate: validator.New(),
		version:  version,
	}

	a.mux.HandleFunc("/healthz", a.handleHealthz)
	a.mux.HandleFunc("/readyz", a.handleReady)
	a.mux.HandleFunc("/v1/info", a.handleInfo)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/login", a.protect("auth.login", a.handleLogin))
	a.mux.HandleFunc("/v1/auth/signup", a.protect("auth.signup", a.handleSignup))
	a.mux.HandleFunc("/v1/auth/logout", a.protect("auth.logout", a.handleLogout))
	a.mux.HandleFunc("/v1/auth/refresh-token", a.protect("auth.refreshToken", a.handleRefresh))

	a.mux.HandleFunc("/v1/me", a.protect("me.get", a.handleMe))
	a.mux.HandleFunc("/v1/users/", a.protect("users.get", a.handleUserByID))
	a.mux.HandleFunc("/v1/users/username/", a.protect("users.getByUsername", a.handleUserByUsername))
	a.mux.HandleFunc("/v1/roles", a.protect("roles.list", a.handleRolesList))
	a.mux.HandleFunc("/v1/roles/name/", a.protect("roles.getByName", a.handleRoleByName))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, 1<<20)
	h = SecurityHeaders(h)
	h = AccessLog(a.log, h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.version,
	})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := a.probe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    serviceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
