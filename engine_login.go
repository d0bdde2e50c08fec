package authcore

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lingolab/authcore/internal/audit"
)

// Login verifies an email/password pair against the lockout guard and
// credential hasher, then issues a token pair. Unknown email and wrong
// password return the same error so callers cannot enumerate accounts.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (*AuthResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	email = strings.ToLower(strings.TrimSpace(email))
	account, err := e.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metrics.Inc(MetricLoginFailure)
			e.emitLoginFailure(ctx, "", email, "unknown_email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if account.Status == StatusBanned || account.Status == StatusInactive {
		e.metrics.Inc(MetricLoginFailure)
		e.emitLoginFailure(ctx, account.ID, email, "account_disabled")
		return nil, ErrAccountDisabled
	}

	now := e.now()
	if e.lockout.IsLocked(account.LockUntil, now) {
		e.metrics.Inc(MetricLoginLocked)
		e.emitLoginFailure(ctx, account.ID, email, "account_locked")
		return nil, ErrAccountLocked
	}

	ok := false
	if account.CredentialHash != "" {
		ok, err = e.hasher.Verify(plaintext, account.CredentialHash)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, e.recordLoginFailure(ctx, account.ID, email)
	}

	var tokens TokenPair
	updated, err := e.updateAccount(ctx, account.ID, func(a *Account) error {
		a.FailedLoginAttempts = 0
		a.LockUntil = nil
		loginAt := e.now()
		a.LastLoginAt = &loginAt
		a.TotalLogins++

		if e.config.Password.UpgradeOnLogin {
			e.maybeUpgradeHash(a, plaintext)
		}

		tokens, err = e.mintSession(ctx, a)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.metrics.Inc(MetricLoginSuccess)
	e.emit(ctx, audit.Event{
		EventType: audit.TypeLoginAttempt,
		AccountID: updated.ID,
		Email:     email,
		Success:   true,
	})

	return &AuthResult{User: e.snapshot(updated), Tokens: tokens}, nil
}

// recordLoginFailure advances the lockout counter atomically and always
// reports ErrInvalidCredentials; the lock only takes effect on the next
// attempt so this response stays indistinguishable from a miss.
func (e *Engine) recordLoginFailure(ctx context.Context, accountID, email string) error {
	locked := false
	_, err := e.updateAccount(ctx, accountID, func(a *Account) error {
		var until *time.Time
		a.FailedLoginAttempts, until = e.lockout.RecordFailure(a.FailedLoginAttempts, e.now())
		if until != nil {
			a.LockUntil = until
			locked = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.metrics.Inc(MetricLoginFailure)
	e.emitLoginFailure(ctx, accountID, email, "wrong_password")
	if locked {
		e.emit(ctx, audit.Event{
			EventType: audit.TypeAccountLocked,
			AccountID: accountID,
			Email:     email,
			Success:   false,
			Reason:    "failed login threshold reached",
		})
	}
	return ErrInvalidCredentials
}

// maybeUpgradeHash transparently rehashes a verified password whose
// stored digest predates the current cost parameters.
func (e *Engine) maybeUpgradeHash(a *Account, plaintext string) {
	needs, err := e.hasher.NeedsRehash(a.CredentialHash)
	if err != nil || !needs {
		return
	}
	rehash, err := e.hasher.Hash(plaintext)
	if err != nil {
		e.logger.Warn("password rehash failed", zap.String("account_id", a.ID), zap.Error(err))
		return
	}
	a.CredentialHash = rehash
}

func (e *Engine) emitLoginFailure(ctx context.Context, accountID, email, reason string) {
	e.emit(ctx, audit.Event{
		EventType: audit.TypeLoginAttempt,
		AccountID: accountID,
		Email:     email,
		Success:   false,
		Reason:    reason,
	})
}
