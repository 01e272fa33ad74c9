package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"recordvault.org/internal/auth"
)

// protect routes a request through the authorization decision engine before
// the handler runs. Deny reasons map deterministically onto status codes:
// anything wrong with the credential itself is 401, a valid credential with
// a role outside the operation's set is 403. The reason never reaches the
// response body; it is kept for logs and audit only.
func (a *API) protect(operationID string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision := a.engine.Authorize(r.Context(), r.Header.Values("Authorization"), operationID)
		if !decision.Allowed {
			a.audit.Event(r.Context(), "authz.denied",
				zap.String("operation", operationID),
				zap.String("reason", string(decision.Reason)))
			if decision.Reason == auth.DenyInsufficientRole {
				writeError(w, r, http.StatusForbidden, "forbidden")
				return
			}
			writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		if decision.Context != nil {
			r = r.WithContext(auth.ContextWithAuth(r.Context(), *decision.Context))
		}
		next(w, r)
	}
}
