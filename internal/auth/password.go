package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const defaultMaxConcurrentHashes = 4

// Hasher produces and verifies bcrypt password hashes. Hashing is the one
// deliberately expensive step in the whole subsystem, so the hasher bounds
// how many digests may be computed at once; callers over the limit wait on
// their context instead of piling onto the CPU.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewHasher returns a Hasher with the given bcrypt cost. Non-positive cost
// or concurrency values fall back to defaults.
func NewHasher(cost int, maxConcurrent int64) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentHashes
	}
	return &Hasher{cost: cost, sem: semaphore.NewWeighted(maxConcurrent)}
}

// Hash digests the secret with a per-call random salt.
func (h *Hasher) Hash(ctx context.Context, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("secret is empty")
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify recomputes the digest and compares. Any failure, including internal
// bcrypt errors, reads as non-match: the function never fails open.
func (h *Hasher) Verify(ctx context.Context, secret, hash string) error {
	if secret == "" || hash == "" {
		return ErrUnauthorized
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.sem.Release(1)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return ErrUnauthorized
	}
	return nil
}
