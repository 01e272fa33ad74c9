package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the token validity windows. Both are configuration values,
// never hard-coded at the call sites.
const (
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 24 * time.Hour
)

// HTTPConfig holds the listener settings.
type HTTPConfig struct {
	Addr string
}

// PostgresConfig holds the user-directory database settings. An empty DSN
// means the API falls back to the seeded in-memory directory.
type PostgresConfig struct {
	DSN string
}

// AuthConfig holds everything the auth core needs at startup: the signing
// secret and the two TTL policies, plus hashing knobs.
type AuthConfig struct {
	Secret              string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	BcryptCost          int
	MaxConcurrentHashes int64
}

// Config is the full startup configuration, loaded once and never re-read.
type Config struct {
	HTTP     HTTPConfig
	Postgres PostgresConfig
	Auth     AuthConfig
}

// Load reads configuration from the environment, honoring a .env file when
// present. It fails when the signing secret is missing: the service cannot
// issue or verify a single token without it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	secret := strings.TrimSpace(os.Getenv("RECORDVAULT_AUTH_SECRET"))
	if secret == "" {
		return nil, errors.New("config: RECORDVAULT_AUTH_SECRET is not set")
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr: getEnv("RECORDVAULT_HTTP_ADDR", ":8080"),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("RECORDVAULT_PG_DSN"),
		},
		Auth: AuthConfig{
			Secret:              secret,
			AccessTokenTTL:      getDuration("RECORDVAULT_ACCESS_TOKEN_TTL", DefaultAccessTokenTTL),
			RefreshTokenTTL:     getDuration("RECORDVAULT_REFRESH_TOKEN_TTL", DefaultRefreshTokenTTL),
			BcryptCost:          getInt("RECORDVAULT_BCRYPT_COST", 0),
			MaxConcurrentHashes: int64(getInt("RECORDVAULT_MAX_CONCURRENT_HASHES", 0)),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
