package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lingolab/authcore/internal"
	"github.com/lingolab/authcore/internal/audit"
	"github.com/lingolab/authcore/permission"
)

// Register creates a pending account, hands a verification token to the
// notifier, and issues the initial token pair. Verification gates
// host-side features, not login, so the pair is issued immediately; a
// failed verification email is logged and does not abort registration.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Username = strings.TrimSpace(input.Username)
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	roles := input.Roles
	if len(roles) == 0 {
		roles = []permission.Role{permission.RoleStudent}
	}
	for _, r := range roles {
		if _, err := permission.ParseRole(string(r)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	// Three independent uniqueness checks, each with its own conflict
	// reason. The store's indexes are the authoritative backstop.
	if err := e.checkClaimed(ctx, input); err != nil {
		e.metrics.Inc(MetricRegisterDuplicate)
		e.emit(ctx, audit.Event{
			EventType: audit.TypeAccountRegistered,
			Email:     input.Email,
			Success:   false,
			Reason:    err.Error(),
		})
		return nil, err
	}

	hash, err := e.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	verificationToken, err := internal.NewActionToken()
	if err != nil {
		return nil, err
	}

	now := e.now()
	verificationExpiry := now.Add(e.config.Verification.TokenTTL)
	account := &Account{
		ID:                    internal.NewJTI(),
		Email:                 input.Email,
		Username:              input.Username,
		Phone:                 input.Phone,
		Name:                  input.Name,
		CredentialHash:        hash,
		Roles:                 roles,
		Status:                StatusPending,
		Provider:              ProviderLocal,
		VerificationTokenHash: internal.HashActionToken(verificationToken),
		VerificationExpiresAt: &verificationExpiry,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	tokens, err := e.mintSession(ctx, account)
	if err != nil {
		return nil, err
	}

	if err := e.create(ctx, account); err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrPhoneTaken) {
			e.metrics.Inc(MetricRegisterDuplicate)
		}
		return nil, err
	}

	if err := e.notifier.SendVerificationEmail(ctx, account.Email, verificationToken); err != nil {
		e.logger.Warn("verification email delivery failed",
			zap.String("account_id", account.ID),
			zap.Error(err))
	}

	e.metrics.Inc(MetricRegisterSuccess)
	e.emit(ctx, audit.Event{
		EventType: audit.TypeAccountRegistered,
		AccountID: account.ID,
		Email:     account.Email,
		Success:   true,
	})

	return &AuthResult{User: e.snapshot(account), Tokens: tokens}, nil
}

func validateRegisterInput(input RegisterInput) error {
	switch {
	case input.Email == "" || !strings.Contains(input.Email, "@"):
		return fmt.Errorf("%w: email", ErrInvalidInput)
	case len(input.Password) < 8:
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	case input.Username == "":
		return fmt.Errorf("%w: username", ErrInvalidInput)
	case input.Name == "":
		return fmt.Errorf("%w: name", ErrInvalidInput)
	}
	return nil
}

func (e *Engine) checkClaimed(ctx context.Context, input RegisterInput) error {
	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	if _, err := e.store.FindByEmail(sctx, input.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return err
	}
	if _, err := e.store.FindByUsername(sctx, input.Username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return err
	}
	if input.Phone != "" {
		if _, err := e.store.FindByPhone(sctx, input.Phone); err == nil {
			return ErrPhoneTaken
		} else if !errors.Is(err, ErrAccountNotFound) {
			return err
		}
	}
	return nil
}
