package authcore

import (
	"context"
	"fmt"

	"github.com/lingolab/authcore/internal/audit"
	"github.com/lingolab/authcore/session"
)

// Logout revokes the single session paired with the given refresh
// token. Expiry is deliberately not checked — logging out an already
// expired session is a no-op success — but the signature is, so only
// an authentic token can name a jti.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	claims, err := e.codec.ParseRefreshLenient(refreshToken)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	_, err = e.updateAccount(ctx, claims.Subject, func(a *Account) error {
		a.RefreshSessions, _ = session.Remove(a.RefreshSessions, claims.ID)
		return nil
	})
	if err != nil {
		return err
	}

	e.metrics.Inc(MetricLogout)
	e.emit(ctx, audit.Event{
		EventType: audit.TypeLogout,
		AccountID: claims.Subject,
		SessionID: claims.ID,
		Success:   true,
	})
	return nil
}

// LogoutAll revokes every session AND bumps tokenVersion, which also
// kills access tokens that have not expired yet. Without the bump an
// attacker holding a live access token would keep it for its full TTL.
func (e *Engine) LogoutAll(ctx context.Context, accountID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	_, err := e.updateAccount(ctx, accountID, func(a *Account) error {
		a.RefreshSessions = nil
		a.TokenVersion++
		return nil
	})
	if err != nil {
		return err
	}

	e.metrics.Inc(MetricLogoutAll)
	e.emit(ctx, audit.Event{
		EventType: audit.TypeLogoutAll,
		AccountID: accountID,
		Success:   true,
		Reason:    "logout everywhere requested",
	})
	return nil
}

// TerminateSession revokes one session by jti, for "sign out that
// device" screens. Unknown jtis fail with ErrSessionNotFound.
func (e *Engine) TerminateSession(ctx context.Context, accountID, sessionID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	_, err := e.updateAccount(ctx, accountID, func(a *Account) error {
		remaining, removed := session.Remove(a.RefreshSessions, sessionID)
		if !removed {
			return ErrSessionNotFound
		}
		a.RefreshSessions = remaining
		return nil
	})
	if err != nil {
		return err
	}

	e.metrics.Inc(MetricSessionTerminated)
	e.emit(ctx, audit.Event{
		EventType: audit.TypeSessionTerminated,
		AccountID: accountID,
		SessionID: sessionID,
		Success:   true,
	})
	return nil
}

// ListSessions returns the account's active sessions newest first.
// Only metadata leaves the engine, never token material.
func (e *Engine) ListSessions(ctx context.Context, accountID string) ([]SessionInfo, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	account, err := e.findByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	active := session.ActiveNewestFirst(account.RefreshSessions, e.now())
	out := make([]SessionInfo, len(active))
	for i, s := range active {
		out[i] = SessionInfo{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
			Device:    s.Device,
		}
	}
	return out, nil
}
