package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lingolab/authcore/internal"
	"github.com/lingolab/authcore/internal/audit"
)

// ChangePassword verifies the old password and installs the new one.
// Every existing session on every device dies with the old password:
// the session list is cleared and tokenVersion bumped in the same write.
func (e *Engine) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	_, err := e.updateAccount(ctx, accountID, func(a *Account) error {
		ok := false
		if a.CredentialHash != "" {
			var verr error
			ok, verr = e.hasher.Verify(oldPassword, a.CredentialHash)
			if verr != nil {
				return verr
			}
		}
		if !ok {
			return ErrInvalidOldPassword
		}

		hash, herr := e.hasher.Hash(newPassword)
		if herr != nil {
			return fmt.Errorf("hash password: %w", herr)
		}
		a.CredentialHash = hash
		changedAt := e.now()
		a.LastPasswordChange = &changedAt
		a.TokenVersion++
		a.RefreshSessions = nil
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidOldPassword) {
			e.metrics.Inc(MetricPasswordChangeInvalidOld)
		}
		return err
	}

	e.metrics.Inc(MetricPasswordChangeSuccess)
	e.emit(ctx, audit.Event{
		EventType: audit.TypePasswordChanged,
		AccountID: accountID,
		Success:   true,
	})
	return nil
}

// RequestPasswordReset stores a hashed single-use reset token and mails
// the plaintext to the account. An unknown email is a silent success —
// the response must not reveal whether an account exists. Delivery
// failure, unlike the verification mail, is fatal: the caller has to
// know the reset link never went out.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	email = strings.ToLower(strings.TrimSpace(email))
	account, err := e.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil
		}
		return err
	}

	token, err := internal.NewActionToken()
	if err != nil {
		return err
	}

	_, err = e.updateAccount(ctx, account.ID, func(a *Account) error {
		expiry := e.now().Add(e.config.Reset.TokenTTL)
		a.ResetTokenHash = internal.HashActionToken(token)
		a.ResetExpiresAt = &expiry
		return nil
	})
	if err != nil {
		return err
	}

	if err := e.notifier.SendPasswordResetEmail(ctx, account.Email, token); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationDelivery, err)
	}

	e.metrics.Inc(MetricPasswordResetRequest)
	e.emit(ctx, audit.Event{
		EventType: audit.TypePasswordResetInit,
		AccountID: account.ID,
		Email:     account.Email,
		Success:   true,
	})
	return nil
}

// ConfirmPasswordReset consumes a reset token and installs the new
// password, with the same full session invalidation as ChangePassword.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	tokenHash := internal.HashActionToken(token)
	sctx, cancel := e.storeCtx(ctx)
	account, err := e.store.FindByResetTokenHash(sctx, tokenHash)
	cancel()
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metrics.Inc(MetricPasswordResetFailure)
			return ErrInvalidResetToken
		}
		return err
	}

	_, err = e.updateAccount(ctx, account.ID, func(a *Account) error {
		// Re-checked against the fresh read: the token must still be
		// the live one and inside its window.
		if a.ResetTokenHash != tokenHash || a.ResetExpiresAt == nil || !e.now().Before(*a.ResetExpiresAt) {
			return ErrInvalidResetToken
		}

		hash, herr := e.hasher.Hash(newPassword)
		if herr != nil {
			return fmt.Errorf("hash password: %w", herr)
		}
		a.CredentialHash = hash
		changedAt := e.now()
		a.LastPasswordChange = &changedAt
		a.ResetTokenHash = ""
		a.ResetExpiresAt = nil
		a.TokenVersion++
		a.RefreshSessions = nil
		// Proven control of the mailbox also ends any lockout window.
		a.FailedLoginAttempts = 0
		a.LockUntil = nil
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			e.metrics.Inc(MetricPasswordResetFailure)
		}
		return err
	}

	e.metrics.Inc(MetricPasswordResetSuccess)
	e.emit(ctx, audit.Event{
		EventType: audit.TypePasswordReset,
		AccountID: account.ID,
		Email:     account.Email,
		Success:   true,
	})
	return nil
}
