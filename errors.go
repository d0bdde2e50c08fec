package authcore

import "errors"

// Expected, recoverable outcomes. Callers branch with errors.Is; each
// maps to a stable machine-readable code for the transport layer.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// deliberately indistinguishable to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked means the failed-login lockout window is active.
	ErrAccountLocked = errors.New("account locked")
	// ErrAccountDisabled means the account status is banned or inactive.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrInvalidToken covers signature, algorithm, issuer, audience, and
	// claim-shape failures on either token class.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired means an otherwise valid access token is past its TTL.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked means the access token's embedded tokenVersion no
	// longer matches the account.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrRefreshTokenExpired means the refresh jti is unknown or lapsed.
	// Raising it wipes the account's whole session list first, treating
	// replay of a consumed token as a theft signal.
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
	ErrPhoneTaken    = errors.New("phone number already registered")

	ErrInvalidOldPassword       = errors.New("old password incorrect")
	ErrInvalidResetToken        = errors.New("invalid or expired reset token")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrEmailAlreadyVerified     = errors.New("email already verified")

	// ErrNotificationDelivery is fatal on the password-reset path only:
	// the caller must know the reset link never went out.
	ErrNotificationDelivery = errors.New("notification delivery failed")

	ErrSessionNotFound = errors.New("session not found")
	ErrAccountNotFound = errors.New("account not found")

	// ErrStoreUnavailable wraps store/transport failures; retryable.
	ErrStoreUnavailable = errors.New("account store unavailable")
	// ErrVersionConflict is returned by AccountStore.Save when the
	// document changed since it was read. The engine retries on it.
	ErrVersionConflict = errors.New("account version conflict")
	// ErrConflictRetryExhausted is surfaced after too many consecutive
	// version conflicts on one operation.
	ErrConflictRetryExhausted = errors.New("account update retries exhausted")

	ErrEngineNotReady = errors.New("engine not initialized")
	ErrInvalidInput   = errors.New("invalid input")
)
