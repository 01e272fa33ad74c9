package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestCodecRequiresSecret(t *testing.T) {
	if _, err := NewCodec(nil); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	c, err := NewCodec(testSecret)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	token, exp, err := c.SignAccess("admin@example.com", RoleAdmin, 30*time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry %v is not in the future", exp)
	}
	claims, err := c.VerifyAccess(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Username != "admin@example.com" {
		t.Fatalf("username = %q", claims.Username)
	}
	if claims.Role != RoleAdmin {
		t.Fatalf("role = %q", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("jti is empty")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	c, err := NewCodec(testSecret)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	token, _, err := c.SignRefresh("admin@example.com", 24*time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := c.VerifyRefresh(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Username != "admin@example.com" {
		t.Fatalf("username = %q", claims.Username)
	}
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	c, err := NewCodec(testSecret)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	access, _, err := c.SignAccess("a@b.c", RoleCustomer, time.Minute)
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	refresh, _, err := c.SignRefresh("a@b.c", time.Minute)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	if _, err := c.VerifyAccess(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("VerifyAccess(refresh) = %v, want ErrTokenInvalid", err)
	}
	if _, err := c.VerifyRefresh(access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("VerifyRefresh(access) = %v, want ErrTokenInvalid", err)
	}
}

func TestExpiredTokenIsDistinguished(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c, err := NewCodec(testSecret, WithCodecClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	token, _, err := c.SignAccess("a@b.c", RoleAdmin, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	now = base.Add(30 * time.Second)
	if _, err := c.VerifyAccess(token); err != nil {
		t.Fatalf("verify before expiry: %v", err)
	}

	now = base.Add(2 * time.Minute)
	if _, err := c.VerifyAccess(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("verify after expiry = %v, want ErrTokenExpired", err)
	}
}

func TestTamperedTokenIsInvalid(t *testing.T) {
	c, err := NewCodec(testSecret)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	token, _, err := c.SignAccess("a@b.c", RoleAdmin, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		t.Fatalf("token has %d segments", len(segments))
	}
	for i := range segments {
		mutated := make([]string, 3)
		copy(mutated, segments)
		mutated[i] = flipChar(mutated[i])
		if _, err := c.VerifyAccess(strings.Join(mutated, ".")); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("segment %d tampered: err = %v, want ErrTokenInvalid", i, err)
		}
	}
}

func TestWrongSecretIsInvalid(t *testing.T) {
	signer, err := NewCodec(testSecret)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	verifier, err := NewCodec([]byte("another-secret-entirely-32-bytes"))
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	token, _, err := signer.SignAccess("a@b.c", RoleAdmin, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifier.VerifyAccess(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("verify with wrong secret = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	c, err := NewCodec(testSecret)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	for _, token := range []string{"", "   ", "not-a-jwt", "a.b", "a.b.c.d"} {
		if _, err := c.VerifyAccess(token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("VerifyAccess(%q) = %v, want ErrTokenInvalid", token, err)
		}
	}
}

func TestSignInputValidation(t *testing.T) {
	c, err := NewCodec(testSecret)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	if _, _, err := c.SignAccess("", RoleAdmin, time.Minute); err == nil {
		t.Fatal("expected error for empty username")
	}
	if _, _, err := c.SignAccess("a@b.c", RoleAdmin, 0); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}
	if _, _, err := c.SignRefresh("a@b.c", -time.Minute); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

// flipChar swaps one character in the middle of a segment so the payload
// changes but the base64 alphabet is respected.
func flipChar(s string) string {
	if s == "" {
		return "x"
	}
	i := len(s) / 2
	replacement := byte('A')
	if s[i] == 'A' {
		replacement = 'B'
	}
	return s[:i] + string(replacement) + s[i+1:]
}
