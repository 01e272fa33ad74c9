package auth

import "context"

// AuthContext is the immutable identity produced by a successful
// authorization check. It is passed explicitly through the request context;
// nothing downstream mutates it.
type AuthContext struct {
	Username string
	Role     RoleName
}

type authContextKey struct{}

// ContextWithAuth attaches the authorization result to the context.
func ContextWithAuth(ctx context.Context, authCtx AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, authCtx)
}

// FromContext extracts the authorization result from the context.
func FromContext(ctx context.Context) (AuthContext, bool) {
	if ctx == nil {
		return AuthContext{}, false
	}
	v, ok := ctx.Value(authContextKey{}).(AuthContext)
	return v, ok
}
