package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer = "recordvault"

	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// AccessClaims is the payload of a short-lived access token. The role is
// embedded so authorization never needs a directory round trip.
type AccessClaims struct {
	Username string   `json:"username"`
	Role     RoleName `json:"role"`
	TokenUse string   `json:"token_use"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a long-lived refresh token. It carries no
// role on purpose: the role is re-resolved from the directory on every
// refresh, so a stale or escalated role cannot outlive one access-token TTL.
type RefreshClaims struct {
	Username string `json:"username"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// Codec signs and verifies the service's bearer tokens using HS256 and a
// process-wide secret loaded once at startup. It is safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithCodecClock overrides the time source (useful for tests).
func WithCodecClock(fn func() time.Time) CodecOption {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec constructs a Codec. The secret must be non-empty.
func NewCodec(secret []byte, opts ...CodecOption) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: signing secret is not configured")
	}
	c := &Codec{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SignAccess issues an access token for the user and role.
func (c *Codec) SignAccess(username string, role RoleName, ttl time.Duration) (string, time.Time, error) {
	if err := validateSignInput(username, ttl); err != nil {
		return "", time.Time{}, err
	}
	now := c.now().UTC()
	exp := now.Add(ttl)
	claims := AccessClaims{
		Username:         username,
		Role:             role,
		TokenUse:         tokenUseAccess,
		RegisteredClaims: registeredClaims(username, now, exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// SignRefresh issues a refresh token carrying the username only.
func (c *Codec) SignRefresh(username string, ttl time.Duration) (string, time.Time, error) {
	if err := validateSignInput(username, ttl); err != nil {
		return "", time.Time{}, err
	}
	now := c.now().UTC()
	exp := now.Add(ttl)
	claims := RefreshClaims{
		Username:         username,
		TokenUse:         tokenUseRefresh,
		RegisteredClaims: registeredClaims(username, now, exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyAccess checks signature and expiry and returns the access claims.
// A refresh token is rejected as ErrTokenInvalid regardless of validity.
func (c *Codec) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.parseInto(token, claims); err != nil {
		return nil, err
	}
	if claims.TokenUse != tokenUseAccess {
		return nil, ErrTokenInvalid
	}
	if claims.Role == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyRefresh checks signature and expiry and returns the refresh claims.
// An access token is rejected as ErrTokenInvalid regardless of validity.
func (c *Codec) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.parseInto(token, claims); err != nil {
		return nil, err
	}
	if claims.TokenUse != tokenUseRefresh {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (c *Codec) parseInto(token string, claims jwt.Claims) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrTokenInvalid
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenInvalid
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	if username(claims) == "" {
		return ErrTokenInvalid
	}
	return nil
}

// decodeAccessUnverified reads access claims without any signature or expiry
// check. It exists solely so the issuer side can inspect tokens it has just
// signed; it must never sit on a path reachable by unauthenticated input.
func decodeAccessUnverified(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func registeredClaims(subject string, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}
}

func validateSignInput(username string, ttl time.Duration) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("username is required")
	}
	if ttl <= 0 {
		return errors.New("ttl must be greater than zero")
	}
	return nil
}

func username(claims jwt.Claims) string {
	switch c := claims.(type) {
	case *AccessClaims:
		return strings.TrimSpace(c.Username)
	case *RefreshClaims:
		return strings.TrimSpace(c.Username)
	default:
		return ""
	}
}
