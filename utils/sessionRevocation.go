package utils

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"TeleClinic/kv"
)

// Revocations records signed-out sessions until their natural expiry.
type Revocations struct {
	store kv.Store
	now   func() time.Time
}

func NewRevocations(store kv.Store) *Revocations {
	return &Revocations{store: store, now: time.Now}
}

// Revoke marks the session as signed out. Already expired sessions are ignored.
func (r *Revocations) Revoke(ctx context.Context, claims *TokenClaims) error {
	ttl := claims.Expiry.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.store.Set(ctx, revokedKey(claims.TokenID), "1", ttl)
}

// RevokeUser ends every session of userID issued at or before at. The cutoff is kept for ttl,
// which must cover the session lifetime.
func (r *Revocations) RevokeUser(ctx context.Context, userID int64, at time.Time, ttl time.Duration) error {
	return r.store.Set(ctx, userCutoffKey(userID), at.UTC().Format(time.RFC3339Nano), ttl)
}

// IsRevoked reports whether the session was signed out or predates a RevokeUser cutoff.
func (r *Revocations) IsRevoked(ctx context.Context, claims *TokenClaims) (bool, error) {
	_, err := r.store.Get(ctx, revokedKey(claims.TokenID))
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, kv.ErrMissing) {
		return false, err
	}

	raw, err := r.store.Get(ctx, userCutoffKey(claims.UserID))
	if errors.Is(err, kv.ErrMissing) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	cutoff, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return false, fmt.Errorf("parse session cutoff for user %d: %w", claims.UserID, err)
	}
	return !claims.IssuedAt.After(cutoff), nil
}

func revokedKey(tokenID string) string {
	return "revoked_session:" + tokenID
}

func userCutoffKey(userID int64) string {
	return "sessions_revoked_before:" + strconv.FormatInt(userID, 10)
}
