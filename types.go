package authcore

import (
	"context"
	"time"

	"github.com/lingolab/authcore/permission"
	"github.com/lingolab/authcore/session"
)

// AccountStatus is the lifecycle state of an account. It governs
// whether tokens may be issued or accepted.
type AccountStatus string

const (
	// StatusPending — registered, email not yet verified. Login allowed;
	// verification gates host-side features, not authentication.
	StatusPending AccountStatus = "pending"
	StatusActive  AccountStatus = "active"
	// StatusInactive and StatusBanned both refuse token issuance and
	// fail access-token validation.
	StatusInactive AccountStatus = "inactive"
	StatusBanned   AccountStatus = "banned"
)

// AuthProvider names the identity source an account authenticates with.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// Account is the persistent identity document. It is the single unit
// of mutual exclusion: every mutation goes through a fresh read and a
// version-checked save.
type Account struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`

	Email    string `json:"email"`
	Username string `json:"username"`
	Phone    string `json:"phone,omitempty"`

	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`

	// CredentialHash is empty for accounts that only ever authenticated
	// through a federated provider.
	CredentialHash string `json:"credentialHash,omitempty"`

	Roles  []permission.Role `json:"roles"`
	Status AccountStatus     `json:"status"`

	// TokenVersion only ever increases. Access tokens embed it at mint
	// time; a mismatch invalidates the token.
	TokenVersion int64 `json:"tokenVersion"`

	FailedLoginAttempts int        `json:"failedLoginAttempts"`
	LockUntil           *time.Time `json:"lockUntil,omitempty"`

	RefreshSessions []session.Session `json:"refreshSessions"`

	EmailVerified         bool       `json:"emailVerified"`
	VerificationTokenHash string     `json:"verificationTokenHash,omitempty"`
	VerificationExpiresAt *time.Time `json:"verificationExpiresAt,omitempty"`

	ResetTokenHash string     `json:"resetTokenHash,omitempty"`
	ResetExpiresAt *time.Time `json:"resetExpiresAt,omitempty"`

	Provider   AuthProvider `json:"provider"`
	ExternalID string       `json:"externalId,omitempty"`

	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty"`
	LastPasswordChange *time.Time `json:"lastPasswordChange,omitempty"`
	TotalLogins        int64      `json:"totalLogins"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone deep-copies the account so callers can mutate freely before Save.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	out := *a
	out.Roles = append([]permission.Role(nil), a.Roles...)
	out.RefreshSessions = append([]session.Session(nil), a.RefreshSessions...)
	out.LockUntil = cloneTime(a.LockUntil)
	out.VerificationExpiresAt = cloneTime(a.VerificationExpiresAt)
	out.ResetExpiresAt = cloneTime(a.ResetExpiresAt)
	out.LastLoginAt = cloneTime(a.LastLoginAt)
	out.LastPasswordChange = cloneTime(a.LastPasswordChange)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// AccountStore is the persistence collaborator. Finders return
// [ErrAccountNotFound] for a miss and wrap transport failures in
// [ErrStoreUnavailable]. Save must compare the document version it was
// given against the stored one and fail with [ErrVersionConflict] on
// mismatch; on success it persists with the version incremented. Create
// enforces the email/username/phone/external-id uniqueness indexes and
// reports conflicts as [ErrEmailTaken], [ErrUsernameTaken], or
// [ErrPhoneTaken].
type AccountStore interface {
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByPhone(ctx context.Context, phone string) (*Account, error)
	FindByExternalID(ctx context.Context, provider AuthProvider, externalID string) (*Account, error)
	FindByResetTokenHash(ctx context.Context, hash string) (*Account, error)
	FindByVerificationTokenHash(ctx context.Context, hash string) (*Account, error)
	Create(ctx context.Context, account *Account) error
	Save(ctx context.Context, account *Account) error
}

// NotificationSender delivers account emails. The engine treats
// verification-mail failure as non-fatal (logged) and reset-mail
// failure as fatal (the caller must know the link never went out).
type NotificationSender interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}

// RegisterInput is the payload for [Engine.Register].
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Username string
	Phone    string
	// Roles defaults to [permission.RoleStudent] when empty.
	Roles []permission.Role
}

// ExternalProfile is the identity asserted by a federated provider
// after the transport layer has completed the OAuth exchange.
type ExternalProfile struct {
	Provider   AuthProvider
	ExternalID string
	Email      string
	Name       string
	AvatarURL  string
}

// TokenPair is one minted access/refresh pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserSnapshot is the caller-facing account view. Never carries the
// credential hash, lockout state, or token material.
type UserSnapshot struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	Username      string            `json:"username"`
	Name          string            `json:"name"`
	Phone         string            `json:"phone,omitempty"`
	AvatarURL     string            `json:"avatarUrl,omitempty"`
	Roles         []permission.Role `json:"roles"`
	Status        AccountStatus     `json:"status"`
	EmailVerified bool              `json:"emailVerified"`
	Provider      AuthProvider      `json:"provider"`
	LastLoginAt   *time.Time        `json:"lastLoginAt,omitempty"`
	TotalLogins   int64             `json:"totalLogins"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// AuthResult is returned by every token-issuing operation.
type AuthResult struct {
	User   UserSnapshot `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

// SessionInfo is one entry of a session listing. Raw token material is
// never included; ID is the jti.
type SessionInfo struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	ExpiresAt time.Time          `json:"expiresAt"`
	Device    session.DeviceInfo `json:"device"`
}

// AccessIdentity is the verdict of [Engine.Authorize]: the caller's
// identity and capability set as embedded in a still-valid access token.
type AccessIdentity struct {
	AccountID    string
	Roles        []permission.Role
	Permissions  []permission.Permission
	TokenVersion int64
}

// HasPermission reports whether the resolved capability set contains p.
func (id *AccessIdentity) HasPermission(p permission.Permission) bool {
	for _, held := range id.Permissions {
		if held == p {
			return true
		}
	}
	return false
}
