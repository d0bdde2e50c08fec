package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/lingolab/authcore/internal"
	"github.com/lingolab/authcore/internal/audit"
)

// VerifyEmail consumes a verification token, marks the email verified,
// and promotes a pending account to active.
func (e *Engine) VerifyEmail(ctx context.Context, token string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	tokenHash := internal.HashActionToken(token)
	sctx, cancel := e.storeCtx(ctx)
	account, err := e.store.FindByVerificationTokenHash(sctx, tokenHash)
	cancel()
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metrics.Inc(MetricEmailVerificationFailure)
			return ErrInvalidVerificationToken
		}
		return err
	}

	_, err = e.updateAccount(ctx, account.ID, func(a *Account) error {
		if a.EmailVerified {
			return ErrEmailAlreadyVerified
		}
		if a.VerificationTokenHash != tokenHash || a.VerificationExpiresAt == nil ||
			!e.now().Before(*a.VerificationExpiresAt) {
			return ErrInvalidVerificationToken
		}

		a.EmailVerified = true
		a.VerificationTokenHash = ""
		a.VerificationExpiresAt = nil
		if a.Status == StatusPending {
			a.Status = StatusActive
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidVerificationToken) {
			e.metrics.Inc(MetricEmailVerificationFailure)
		}
		return err
	}

	e.metrics.Inc(MetricEmailVerificationSuccess)
	e.emit(ctx, audit.Event{
		EventType: audit.TypeEmailVerified,
		AccountID: account.ID,
		Email:     account.Email,
		Success:   true,
	})
	return nil
}

// ResendVerification replaces the pending verification token and mails
// the new one. The caller asked for the mail, so delivery failure is
// surfaced rather than swallowed.
func (e *Engine) ResendVerification(ctx context.Context, accountID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	account, err := e.findByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.EmailVerified {
		return ErrEmailAlreadyVerified
	}

	token, err := internal.NewActionToken()
	if err != nil {
		return err
	}

	_, err = e.updateAccount(ctx, accountID, func(a *Account) error {
		if a.EmailVerified {
			return ErrEmailAlreadyVerified
		}
		expiry := e.now().Add(e.config.Verification.TokenTTL)
		a.VerificationTokenHash = internal.HashActionToken(token)
		a.VerificationExpiresAt = &expiry
		return nil
	})
	if err != nil {
		return err
	}

	if err := e.notifier.SendVerificationEmail(ctx, account.Email, token); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationDelivery, err)
	}

	e.emit(ctx, audit.Event{
		EventType: audit.TypeVerificationResent,
		AccountID: accountID,
		Email:     account.Email,
		Success:   true,
	})
	return nil
}
