package authcore

import (
	"errors"
	"time"
)

// Config is the engine's full configuration. Treat it as immutable
// after Build; the builder clones it.
type Config struct {
	JWT          JWTConfig
	Password     PasswordConfig
	Lockout      LockoutConfig
	Session      SessionConfig
	Reset        ResetConfig
	Verification VerificationConfig
	Store        StoreConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig fixes token lifetimes and signing material. Access and
// refresh secrets must differ so one compromise does not cascade.
type JWTConfig struct {
	Issuer        string
	Audience      string
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Leeway        time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig carries Argon2id parameters. Memory is in KiB.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// Pepper is mixed into every hash; losing it invalidates all
	// stored digests, so treat it like a signing key.
	Pepper []byte
	// UpgradeOnLogin rehashes a verified password whose stored digest
	// uses weaker parameters than the current config.
	UpgradeOnLogin bool
}

/*
====================================
LOCKOUT / SESSION CONFIG
====================================
*/

// LockoutConfig tunes the failed-login guard. Threshold 0 disables it.
type LockoutConfig struct {
	Threshold int
	Duration  time.Duration
}

// SessionConfig bounds the per-account session list. MaxPerAccount 0
// means unlimited; otherwise the oldest session is evicted on append.
type SessionConfig struct {
	MaxPerAccount int
}

/*
====================================
ACTION TOKEN CONFIG
====================================
*/

// ResetConfig tunes password-reset tokens.
type ResetConfig struct {
	TokenTTL time.Duration
}

// VerificationConfig tunes email-verification tokens.
type VerificationConfig struct {
	TokenTTL time.Duration
}

/*
====================================
STORE / OBSERVABILITY CONFIG
====================================
*/

// StoreConfig bounds store interactions. SaveRetries is the number of
// optimistic re-read-and-reapply attempts after a version conflict.
type StoreConfig struct {
	Timeout     time.Duration
	SaveRetries int
}

// AuditConfig controls the async security-event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls counter collection.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			Issuer:     "authcore",
			Audience:   "authcore-app",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Leeway:     30 * time.Second,
		},
		Password: PasswordConfig{
			Memory:         19456,
			Time:           2,
			Parallelism:    1,
			SaltLength:     16,
			KeyLength:      32,
			UpgradeOnLogin: true,
		},
		Lockout: LockoutConfig{
			Threshold: 5,
			Duration:  30 * time.Minute,
		},
		Session: SessionConfig{
			MaxPerAccount: 10,
		},
		Reset: ResetConfig{
			TokenTTL: time.Hour,
		},
		Verification: VerificationConfig{
			TokenTTL: 24 * time.Hour,
		},
		Store: StoreConfig{
			Timeout:     5 * time.Second,
			SaveRetries: 3,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the baseline configuration. Secrets are left
// empty and must be set before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = cloneBytes(cfg.JWT.AccessSecret)
	out.JWT.RefreshSecret = cloneBytes(cfg.JWT.RefreshSecret)
	out.Password.Pepper = cloneBytes(cfg.Password.Pepper)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate rejects configurations the engine cannot run safely with.
// The jwt and password packages re-check their own parameters; this
// covers what only the engine knows.
func (c *Config) Validate() error {
	if c.JWT.Issuer == "" || c.JWT.Audience == "" {
		return errors.New("JWT issuer and audience are required")
	}
	if len(c.JWT.AccessSecret) == 0 || len(c.JWT.RefreshSecret) == 0 {
		return errors.New("JWT secrets are required")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT TTLs must be > 0")
	}
	if c.Lockout.Threshold < 0 {
		return errors.New("lockout threshold must be >= 0")
	}
	if c.Lockout.Threshold > 0 && c.Lockout.Duration <= 0 {
		return errors.New("lockout duration must be > 0 when threshold is set")
	}
	if c.Session.MaxPerAccount < 0 {
		return errors.New("session cap must be >= 0")
	}
	if c.Reset.TokenTTL <= 0 {
		return errors.New("reset token TTL must be > 0")
	}
	if c.Verification.TokenTTL <= 0 {
		return errors.New("verification token TTL must be > 0")
	}
	if c.Store.Timeout <= 0 {
		return errors.New("store timeout must be > 0")
	}
	if c.Store.SaveRetries < 0 {
		return errors.New("store save retries must be >= 0")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be > 0")
	}
	return nil
}
