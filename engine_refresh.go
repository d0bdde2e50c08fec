package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/lingolab/authcore/internal/audit"
	"github.com/lingolab/authcore/session"
)

// Refresh rotates a refresh token: the presented jti is consumed and a
// brand-new pair is minted, so each refresh token works exactly once.
// A jti that is missing from the account's session list — a consumed
// token being replayed, or one revoked by logout — wipes the entire
// session list before failing, treating replay as a theft signal.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.codec.ParseRefresh(refreshToken)
	if err != nil {
		e.metrics.Inc(MetricRefreshFailure)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var (
		tokens TokenPair
		reuse  bool
	)
	updated, err := e.updateAccount(ctx, claims.Subject, func(a *Account) error {
		reuse = false

		if a.Status == StatusBanned || a.Status == StatusInactive {
			return ErrAccountDisabled
		}

		now := e.now()
		current, found := session.Find(a.RefreshSessions, claims.ID)
		if !found || current.Expired(now) {
			// Defensive wipe: every session on every device dies with
			// the suspect token. Persisted even though the call fails.
			a.RefreshSessions = nil
			reuse = true
			return nil
		}

		a.RefreshSessions, _ = session.Remove(a.RefreshSessions, claims.ID)

		var mintErr error
		tokens, mintErr = e.mintSession(ctx, a)
		return mintErr
	})
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metrics.Inc(MetricRefreshFailure)
		}
		return nil, err
	}

	if reuse {
		e.metrics.Inc(MetricRefreshReuseDetected)
		e.metrics.Inc(MetricRefreshFailure)
		e.emit(ctx, audit.Event{
			EventType: audit.TypeRefreshReuse,
			AccountID: claims.Subject,
			SessionID: claims.ID,
			Success:   false,
			Reason:    "jti not in session list",
		})
		return nil, ErrRefreshTokenExpired
	}

	e.metrics.Inc(MetricRefreshSuccess)
	e.emit(ctx, audit.Event{
		EventType: audit.TypeTokenRefreshed,
		AccountID: updated.ID,
		SessionID: claims.ID,
		Success:   true,
	})

	return &AuthResult{User: e.snapshot(updated), Tokens: tokens}, nil
}
