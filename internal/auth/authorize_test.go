package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...CodecOption) (*Engine, *Codec) {
	t.Helper()
	codec, err := NewCodec(testSecret, opts...)
	require.NoError(t, err)
	routes, err := NewRegistry(DefaultRequirements()...)
	require.NoError(t, err)
	engine, err := NewEngine(codec, routes)
	require.NoError(t, err)
	return engine, codec
}

func bearer(t *testing.T, codec *Codec, username string, role RoleName) []string {
	t.Helper()
	token, _, err := codec.SignAccess(username, role, time.Minute)
	require.NoError(t, err)
	return []string{"Bearer " + token}
}

func TestAuthorizeAllowsDeclaredRole(t *testing.T) {
	engine, codec := newTestEngine(t)

	d := engine.Authorize(context.Background(), bearer(t, codec, "emp@example.com", RoleEmployee), "users.list")
	require.True(t, d.Allowed)
	require.NotNil(t, d.Context)
	assert.Equal(t, "emp@example.com", d.Context.Username)
	assert.Equal(t, RoleEmployee, d.Context.Role)
}

func TestAuthorizeDeniesRoleOutsideSet(t *testing.T) {
	engine, codec := newTestEngine(t)

	d := engine.Authorize(context.Background(), bearer(t, codec, "cust@example.com", RoleCustomer), "users.list")
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyInsufficientRole, d.Reason)
	assert.Nil(t, d.Context)

	d = engine.Authorize(context.Background(), bearer(t, codec, "emp@example.com", RoleEmployee), "roles.create")
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyInsufficientRole, d.Reason)
}

func TestAuthorizeSuperAdminBypassesEveryRequirement(t *testing.T) {
	engine, codec := newTestEngine(t)
	header := bearer(t, codec, "root@example.com", RoleSuperAdmin)

	for _, op := range []string{"me.get", "users.delete", "roles.create", "roles.list"} {
		d := engine.Authorize(context.Background(), header, op)
		assert.True(t, d.Allowed, "operation %s", op)
	}
}

func TestAuthorizePublicOperationSkipsTokenInspection(t *testing.T) {
	engine, _ := newTestEngine(t)

	// No requirement declared for login: allowed with no header at all.
	d := engine.Authorize(context.Background(), nil, "auth.login")
	assert.True(t, d.Allowed)
	assert.Nil(t, d.Context)

	// Even garbage credentials do not matter on a public operation.
	d = engine.Authorize(context.Background(), []string{"Bearer garbage"}, "auth.login")
	assert.True(t, d.Allowed)
}

func TestAuthorizeMalformedHeaders(t *testing.T) {
	engine, codec := newTestEngine(t)
	valid := bearer(t, codec, "emp@example.com", RoleEmployee)[0]

	cases := []struct {
		name   string
		header []string
	}{
		{"no header", nil},
		{"empty value", []string{""}},
		{"wrong scheme", []string{"Token abc"}},
		{"missing token", []string{"Bearer"}},
		{"empty token", []string{"Bearer "}},
		{"extra segment", []string{valid + " extra"}},
		{"duplicate header", []string{valid, valid}},
	}
	for _, tc := range cases {
		d := engine.Authorize(context.Background(), tc.header, "users.list")
		assert.False(t, d.Allowed, tc.name)
		assert.Equal(t, DenyMalformedCredential, d.Reason, tc.name)
	}
}

func TestAuthorizeCaseInsensitiveScheme(t *testing.T) {
	engine, codec := newTestEngine(t)
	token, _, err := codec.SignAccess("emp@example.com", RoleEmployee, time.Minute)
	require.NoError(t, err)

	d := engine.Authorize(context.Background(), []string{"bearer " + token}, "users.list")
	assert.True(t, d.Allowed)
}

func TestAuthorizeExpiredToken(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	engine, codec := newTestEngine(t, WithCodecClock(func() time.Time { return now }))
	header := bearer(t, codec, "emp@example.com", RoleEmployee)

	now = base.Add(2 * time.Minute)
	d := engine.Authorize(context.Background(), header, "users.list")
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyTokenExpired, d.Reason)
}

func TestAuthorizeTamperedToken(t *testing.T) {
	engine, codec := newTestEngine(t)
	token, _, err := codec.SignAccess("emp@example.com", RoleEmployee, time.Minute)
	require.NoError(t, err)

	d := engine.Authorize(context.Background(), []string{"Bearer " + token + "x"}, "users.list")
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyTokenInvalid, d.Reason)
}

func TestAuthorizeRejectsRefreshToken(t *testing.T) {
	engine, codec := newTestEngine(t)
	refresh, _, err := codec.SignRefresh("emp@example.com", time.Hour)
	require.NoError(t, err)

	d := engine.Authorize(context.Background(), []string{"Bearer " + refresh}, "users.list")
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyTokenInvalid, d.Reason)
}

func TestAuthorizeUnknownRoleInVerifiedToken(t *testing.T) {
	codec, err := NewCodec(testSecret)
	require.NoError(t, err)
	routes, err := NewRegistry(RouteRequirement{OperationID: "op", AllowedRoles: []RoleName{RoleAdmin}})
	require.NoError(t, err)
	engine, err := NewEngine(codec, routes)
	require.NoError(t, err)

	token, _, err := codec.SignAccess("x@example.com", RoleName("AUDITOR"), time.Minute)
	require.NoError(t, err)

	d := engine.Authorize(context.Background(), []string{"Bearer " + token}, "op")
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyInsufficientRole, d.Reason)
}

func TestAuthContextRoundTrip(t *testing.T) {
	ctx := ContextWithAuth(context.Background(), AuthContext{Username: "a@b.c", Role: RoleAdmin})
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "a@b.c", got.Username)
	assert.Equal(t, RoleAdmin, got.Role)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
