package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lingolab/authcore/internal"
	"github.com/lingolab/authcore/internal/audit"
	"github.com/lingolab/authcore/internal/limiters"
	"github.com/lingolab/authcore/jwt"
	"github.com/lingolab/authcore/password"
	"github.com/lingolab/authcore/permission"
	"github.com/lingolab/authcore/session"
)

// Engine orchestrates every authentication operation. Safe for
// concurrent use; all mutable state lives in the account store.
type Engine struct {
	config   Config
	store    AccountStore
	notifier NotificationSender
	hasher   *password.Hasher
	codec    *jwt.Manager
	resolver *permission.Resolver
	lockout  limiters.Lockout
	audit    *audit.Dispatcher
	metrics  *Metrics
	logger   *zap.Logger

	// now is swapped in tests to drive lockout and expiry windows.
	now func() time.Time
}

// Close drains and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped reports audit events discarded under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Resolver exposes the permission resolver for host-side checks.
func (e *Engine) Resolver() *permission.Resolver {
	return e.resolver
}

// Authorize validates an access token end to end: signature and claims,
// then the live account's status and tokenVersion. On success it returns
// the caller's identity with the capability set resolved from the roles
// embedded in the token (not re-read from storage).
func (e *Engine) Authorize(ctx context.Context, accessToken string) (*AccessIdentity, error) {
	start := e.now()

	claims, err := e.codec.ParseAccess(accessToken)
	if err != nil {
		e.metrics.Inc(MetricAuthorizeFailure)
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	account, err := e.findByID(ctx, claims.Subject)
	if err != nil {
		e.metrics.Inc(MetricAuthorizeFailure)
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if account.Status == StatusBanned || account.Status == StatusInactive {
		e.metrics.Inc(MetricAuthorizeFailure)
		return nil, ErrAccountDisabled
	}
	if claims.TokenVersion != account.TokenVersion {
		e.metrics.Inc(MetricAuthorizeFailure)
		return nil, ErrTokenRevoked
	}

	roles := rolesFromStrings(claims.Roles)
	identity := &AccessIdentity{
		AccountID:    account.ID,
		Roles:        roles,
		Permissions:  e.resolver.Resolve(roles),
		TokenVersion: claims.TokenVersion,
	}

	e.metrics.Inc(MetricAuthorizeSuccess)
	e.metrics.Observe(MetricAuthorizeLatency, e.now().Sub(start))
	return identity, nil
}

/*
====================================
STORE ACCESS
====================================
*/

func (e *Engine) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.config.Store.Timeout)
}

func (e *Engine) findByID(ctx context.Context, id string) (*Account, error) {
	ctx, cancel := e.storeCtx(ctx)
	defer cancel()
	return e.store.FindByID(ctx, id)
}

func (e *Engine) findByEmail(ctx context.Context, email string) (*Account, error) {
	ctx, cancel := e.storeCtx(ctx)
	defer cancel()
	return e.store.FindByEmail(ctx, email)
}

func (e *Engine) create(ctx context.Context, account *Account) error {
	ctx, cancel := e.storeCtx(ctx)
	defer cancel()
	return e.store.Create(ctx, account)
}

func (e *Engine) save(ctx context.Context, account *Account) error {
	ctx, cancel := e.storeCtx(ctx)
	defer cancel()
	return e.store.Save(ctx, account)
}

// updateAccount applies mutate under optimistic concurrency: read a
// fresh document, transform it, save with a version check, and on
// conflict re-read and reapply. A concurrent mutation from another
// device is therefore never silently overwritten.
func (e *Engine) updateAccount(ctx context.Context, id string, mutate func(*Account) error) (*Account, error) {
	for attempt := 0; ; attempt++ {
		account, err := e.findByID(ctx, id)
		if err != nil {
			return nil, err
		}

		account.UpdatedAt = e.now()
		if err := mutate(account); err != nil {
			return nil, err
		}

		err = e.save(ctx, account)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, err
		}
		if attempt >= e.config.Store.SaveRetries {
			return nil, fmt.Errorf("%w: %d attempts on account %s", ErrConflictRetryExhausted, attempt+1, id)
		}
		e.metrics.Inc(MetricStoreConflictRetry)
	}
}

/*
====================================
TOKEN ISSUANCE
====================================
*/

// mintSession appends a fresh refresh session to the account (which the
// caller persists) and signs the matching token pair.
func (e *Engine) mintSession(ctx context.Context, account *Account) (TokenPair, error) {
	jti := internal.NewJTI()
	now := e.now()

	account.RefreshSessions = session.Append(
		account.RefreshSessions,
		session.New(jti, now, e.config.JWT.RefreshTTL, deviceFromContext(ctx)),
		now,
		e.config.Session.MaxPerAccount,
	)

	access, err := e.codec.SignAccess(account.ID, roleStrings(account.Roles), account.TokenVersion)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := e.codec.SignRefresh(account.ID, jti)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	e.metrics.Inc(MetricSessionCreated)
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (e *Engine) snapshot(account *Account) UserSnapshot {
	return UserSnapshot{
		ID:            account.ID,
		Email:         account.Email,
		Username:      account.Username,
		Name:          account.Name,
		Phone:         account.Phone,
		AvatarURL:     account.AvatarURL,
		Roles:         append([]permission.Role(nil), account.Roles...),
		Status:        account.Status,
		EmailVerified: account.EmailVerified,
		Provider:      account.Provider,
		LastLoginAt:   cloneTime(account.LastLoginAt),
		TotalLogins:   account.TotalLogins,
		CreatedAt:     account.CreatedAt,
	}
}

func roleStrings(roles []permission.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func rolesFromStrings(raw []string) []permission.Role {
	out := make([]permission.Role, len(raw))
	for i, r := range raw {
		out[i] = permission.Role(r)
	}
	return out
}
