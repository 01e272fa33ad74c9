package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"recordvault.org/internal/ids"
	"recordvault.org/internal/obs"
)

const (
	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 24 * time.Hour
)

// Service is the session issuer: it validates credentials or refresh tokens
// against the user directory and produces access/refresh token pairs. It
// holds no session state of its own; a pair's validity is entirely a
// property of the tokens.
type Service struct {
	dir        Directory
	codec      *Codec
	hasher     *Hasher
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	log        *zap.Logger
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithRefreshTTL configures refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// WithHasher overrides the credential hasher.
func WithHasher(h *Hasher) ServiceOption {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(log *zap.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService constructs the session issuer. The signing secret must be
// non-empty; it is the only key material the service ever holds.
func NewService(dir Directory, secret []byte, opts ...ServiceOption) (*Service, error) {
	if dir == nil {
		return nil, errors.New("auth: directory is required")
	}
	svc := &Service{
		dir:        dir,
		hasher:     NewHasher(0, 0),
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		now:        time.Now,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	codec, err := NewCodec(secret, WithCodecClock(svc.now))
	if err != nil {
		return nil, err
	}
	svc.codec = codec
	return svc, nil
}

// Codec exposes the token codec so the authorization engine can share the
// same key material and clock.
func (s *Service) Codec() *Codec {
	return s.codec
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// LogoutReceipt acknowledges a logout so the client knows to discard its
// local tokens.
type LogoutReceipt struct {
	Message string `json:"message"`
}

// Login verifies the credential against the directory and issues a token
// pair. A missing user and a wrong secret are indistinguishable to the
// caller: both return ErrUnauthorized.
func (s *Service) Login(ctx context.Context, cred Credential) (TokenPair, error) {
	username := strings.TrimSpace(cred.Username)
	if username == "" || cred.Secret == "" {
		obs.ObserveLogin(false)
		return TokenPair{}, ErrUnauthorized
	}
	user, err := s.dir.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			obs.ObserveLogin(false)
			s.log.Warn("login rejected", zap.String("reason", "unknown_user"))
			return TokenPair{}, ErrUnauthorized
		}
		obs.ObserveLogin(false)
		return TokenPair{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if err := s.hasher.Verify(ctx, cred.Secret, user.PasswordHash); err != nil {
		obs.ObserveLogin(false)
		s.log.Warn("login rejected", zap.String("reason", "bad_secret"))
		return TokenPair{}, ErrUnauthorized
	}
	pair, err := s.mintPair(user)
	if err != nil {
		obs.ObserveLogin(false)
		return TokenPair{}, err
	}
	obs.ObserveLogin(true)
	s.log.Info("login succeeded", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return pair, nil
}

// Refresh verifies the refresh token, re-resolves the user from the
// directory by the verified username claim and issues a fresh pair. Because
// the role is read from the directory here and not from the token, a role
// change or account removal takes effect on the next refresh without any
// revocation list.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		obs.ObserveRefresh(false)
		s.log.Warn("refresh rejected", zap.Error(err))
		return TokenPair{}, ErrUnauthorized
	}
	user, err := s.dir.FindByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			obs.ObserveRefresh(false)
			s.log.Warn("refresh rejected", zap.String("reason", "unknown_user"))
			return TokenPair{}, ErrUnauthorized
		}
		obs.ObserveRefresh(false)
		return TokenPair{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	pair, err := s.mintPair(user)
	if err != nil {
		obs.ObserveRefresh(false)
		return TokenPair{}, err
	}
	obs.ObserveRefresh(true)
	s.log.Info("tokens refreshed", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return pair, nil
}

// Logout is stateless: no server-side token is invalidated because none is
// stored. The receipt gives clients a well-defined signal to drop their
// local tokens.
func (s *Service) Logout() LogoutReceipt {
	return LogoutReceipt{Message: "Successful logout"}
}

// SignUpCustomer creates a customer account. Any attempt to request a role
// other than CUSTOMER is rejected before the directory is touched.
func (s *Service) SignUpCustomer(ctx context.Context, username, secret string, role RoleName) (*StoredUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || secret == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if role != "" && role != RoleCustomer {
		return nil, fmt.Errorf("%w: self sign-up is limited to the customer role", ErrInvalidInput)
	}
	hash, err := s.hasher.Hash(ctx, secret)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	user := &StoredUser{
		ID:           ids.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.dir.Create(ctx, user); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	s.log.Info("customer signed up", zap.String("username", user.Username))
	return user, nil
}

func (s *Service) mintPair(user *StoredUser) (TokenPair, error) {
	access, accessExp, err := s.codec.SignAccess(user.Username, user.Role, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := s.codec.SignRefresh(user.Username, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}
