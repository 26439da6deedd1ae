package utils

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"TeleClinic/kv"
)

const (
	// ResetCodeExpiry is how long a mailed reset code stays valid.
	ResetCodeExpiry = 15 * time.Minute
	// MaxResetAttempts is how many wrong guesses burn a reset code.
	MaxResetAttempts = 5
)

// ResetCodes keeps password reset codes in the key/value store.
type ResetCodes struct {
	store kv.Store
}

func NewResetCodes(store kv.Store) *ResetCodes {
	return &ResetCodes{store: store}
}

// Set stores a fresh reset code for email and clears earlier failed attempts.
func (r *ResetCodes) Set(ctx context.Context, email, code string) error {
	if err := r.store.Delete(ctx, resetAttemptsKey(email)); err != nil {
		return err
	}
	return r.store.Set(ctx, resetCodeKey(email), code, ResetCodeExpiry)
}

// Verify reports whether code matches the stored one for email. After MaxResetAttempts misses the
// stored code is deleted, so further guesses fail even with the right code.
func (r *ResetCodes) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := r.store.Get(ctx, resetCodeKey(email))
	if errors.Is(err, kv.ErrMissing) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1 {
		return true, nil
	}

	misses, err := r.store.Incr(ctx, resetAttemptsKey(email), ResetCodeExpiry)
	if err != nil {
		return false, err
	}
	if misses >= MaxResetAttempts {
		if err := r.Delete(ctx, email); err != nil {
			return false, err
		}
	}
	return false, nil
}

// Delete removes the reset code for email together with its attempt counter.
func (r *ResetCodes) Delete(ctx context.Context, email string) error {
	if err := r.store.Delete(ctx, resetCodeKey(email)); err != nil {
		return err
	}
	return r.store.Delete(ctx, resetAttemptsKey(email))
}

func resetCodeKey(email string) string {
	return "reset_code:" + email
}

func resetAttemptsKey(email string) string {
	return "reset_attempts:" + email
}
