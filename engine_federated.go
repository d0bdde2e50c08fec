package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lingolab/authcore/internal"
	"github.com/lingolab/authcore/internal/audit"
	"github.com/lingolab/authcore/permission"
)

// FederatedLogin signs in an identity asserted by an external provider.
// Resolution order: an account already linked to the external ID wins;
// otherwise an account with the same email is linked to it (the
// provider vouched for the mailbox, so the email becomes verified);
// otherwise a fresh pre-activated account is created with a synthesized
// username. The OAuth redirect dance itself is the transport layer's
// job — this takes the already-validated profile.
func (e *Engine) FederatedLogin(ctx context.Context, profile ExternalProfile) (*AuthResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if profile.Provider == "" || profile.ExternalID == "" || profile.Email == "" {
		return nil, fmt.Errorf("%w: incomplete external profile", ErrInvalidInput)
	}
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))

	sctx, cancel := e.storeCtx(ctx)
	account, err := e.store.FindByExternalID(sctx, profile.Provider, profile.ExternalID)
	cancel()
	switch {
	case err == nil:
		return e.federatedIssue(ctx, account.ID, nil)
	case !errors.Is(err, ErrAccountNotFound):
		return nil, err
	}

	account, err = e.findByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		// Link the external identity to the existing local account.
		return e.federatedIssue(ctx, account.ID, func(a *Account) {
			a.ExternalID = profile.ExternalID
			a.Provider = profile.Provider
			a.EmailVerified = true
			a.VerificationTokenHash = ""
			a.VerificationExpiresAt = nil
			if a.Status == StatusPending {
				a.Status = StatusActive
			}
			if a.AvatarURL == "" {
				a.AvatarURL = profile.AvatarURL
			}
		})
	case !errors.Is(err, ErrAccountNotFound):
		return nil, err
	}

	return e.federatedCreate(ctx, profile)
}

// federatedIssue applies link, records the login, and mints a pair for
// an existing account.
func (e *Engine) federatedIssue(ctx context.Context, accountID string, link func(*Account)) (*AuthResult, error) {
	var tokens TokenPair
	updated, err := e.updateAccount(ctx, accountID, func(a *Account) error {
		if a.Status == StatusBanned || a.Status == StatusInactive {
			return ErrAccountDisabled
		}
		if link != nil {
			link(a)
		}
		loginAt := e.now()
		a.LastLoginAt = &loginAt
		a.TotalLogins++

		var mintErr error
		tokens, mintErr = e.mintSession(ctx, a)
		return mintErr
	})
	if err != nil {
		return nil, err
	}

	e.metrics.Inc(MetricFederatedLoginSuccess)
	e.emit(ctx, audit.Event{
		EventType: audit.TypeFederatedLogin,
		AccountID: updated.ID,
		Email:     updated.Email,
		Success:   true,
		Metadata:  map[string]string{"provider": string(updated.Provider)},
	})
	return &AuthResult{User: e.snapshot(updated), Tokens: tokens}, nil
}

// federatedCreate provisions a brand-new account from the profile.
// Pre-activated and pre-verified: the provider already proved the email.
func (e *Engine) federatedCreate(ctx context.Context, profile ExternalProfile) (*AuthResult, error) {
	username, err := internal.SynthesizeUsername(profile.Email)
	if err != nil {
		return nil, err
	}

	now := e.now()
	loginAt := now
	account := &Account{
		ID:            internal.NewJTI(),
		Email:         profile.Email,
		Username:      username,
		Name:          profile.Name,
		AvatarURL:     profile.AvatarURL,
		Roles:         []permission.Role{permission.RoleStudent},
		Status:        StatusActive,
		EmailVerified: true,
		Provider:      profile.Provider,
		ExternalID:    profile.ExternalID,
		LastLoginAt:   &loginAt,
		TotalLogins:   1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	tokens, err := e.mintSession(ctx, account)
	if err != nil {
		return nil, err
	}
	if err := e.create(ctx, account); err != nil {
		return nil, err
	}

	e.metrics.Inc(MetricFederatedLoginSuccess)
	e.emit(ctx, audit.Event{
		EventType: audit.TypeFederatedLogin,
		AccountID: account.ID,
		Email:     account.Email,
		Success:   true,
		Metadata: map[string]string{
			"provider": string(profile.Provider),
			"created":  "true",
		},
	})
	return &AuthResult{User: e.snapshot(account), Tokens: tokens}, nil
}
