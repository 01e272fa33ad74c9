package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"recordvault.org/internal/obs"
)

// DenyReason explains a rejected authorization check. It is kept for
// internal observability; callers outside the boundary only ever see the
// allow/deny outcome.
type DenyReason string

const (
	// DenyMalformedCredential: the Authorization header was absent, repeated,
	// used the wrong scheme or was missing the token segment.
	DenyMalformedCredential DenyReason = "malformed_credential"
	// DenyTokenInvalid: bad structure or signature.
	DenyTokenInvalid DenyReason = "token_invalid"
	// DenyTokenExpired: valid signature, past expiry.
	DenyTokenExpired DenyReason = "token_expired"
	// DenyInsufficientRole: valid token, role not in the operation's set.
	DenyInsufficientRole DenyReason = "insufficient_role"
)

// Decision is the terminal result of an authorization check. The engine
// never returns an error: every failure path converges here so the boundary
// can map it deterministically to a transport response.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Context *AuthContext
}

func allow(authCtx *AuthContext) Decision {
	return Decision{Allowed: true, Context: authCtx}
}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Engine decides whether a bearer token may invoke an operation. It is
// stateless and safe for concurrent use: the codec key and route registry
// are loaded once and immutable.
type Engine struct {
	codec  *Codec
	routes *Registry
	log    *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger attaches a structured logger.
func WithEngineLogger(log *zap.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine constructs the authorization decision engine.
func NewEngine(codec *Codec, routes *Registry, opts ...EngineOption) (*Engine, error) {
	if codec == nil {
		return nil, errors.New("auth: codec is required")
	}
	if routes == nil {
		return nil, errors.New("auth: route registry is required")
	}
	e := &Engine{codec: codec, routes: routes, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Authorize runs the per-request decision for an operation. header carries
// the raw Authorization header values as received on the wire.
//
// An operation with no declared requirement is public and allowed outright,
// before any token inspection. For everything else the token must verify,
// and the role must either be SUPER_ADMIN or a member of the operation's
// allowed set. The super-admin bypass is deliberately the first check after
// role resolution so it stays auditable as its own branch.
func (e *Engine) Authorize(ctx context.Context, header []string, operationID string) Decision {
	required, ok := e.routes.Requirement(operationID)
	if !ok {
		return e.record(operationID, allow(nil))
	}

	token, err := extractBearerToken(header)
	if err != nil {
		return e.record(operationID, deny(DenyMalformedCredential))
	}

	claims, err := e.codec.VerifyAccess(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return e.record(operationID, deny(DenyTokenExpired))
		}
		return e.record(operationID, deny(DenyTokenInvalid))
	}

	role, err := ParseRoleName(string(claims.Role))
	if err != nil {
		// A verified token naming a role this build does not know cannot
		// satisfy any requirement.
		return e.record(operationID, deny(DenyInsufficientRole))
	}
	authCtx := &AuthContext{Username: claims.Username, Role: role}

	if role == RoleSuperAdmin {
		return e.record(operationID, allow(authCtx))
	}
	for _, allowed := range required {
		if role == allowed {
			return e.record(operationID, allow(authCtx))
		}
	}
	return e.record(operationID, deny(DenyInsufficientRole))
}

func (e *Engine) record(operationID string, d Decision) Decision {
	obs.ObserveAuthDecision(d.Allowed, string(d.Reason))
	if d.Allowed {
		e.log.Debug("authorization allowed", zap.String("operation", operationID))
	} else {
		e.log.Info("authorization denied",
			zap.String("operation", operationID),
			zap.String("reason", string(d.Reason)))
	}
	return d
}

// extractBearerToken accepts exactly one header value of the exact shape
// "Bearer <token>". Anything else is malformed.
func extractBearerToken(header []string) (string, error) {
	if len(header) != 1 {
		return "", errors.New("authorization header must appear exactly once")
	}
	parts := strings.Split(header[0], " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("authorization header must be of the form 'Bearer <token>'")
	}
	return parts[1], nil
}
