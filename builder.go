package authcore

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lingolab/authcore/internal/audit"
	"github.com/lingolab/authcore/internal/limiters"
	"github.com/lingolab/authcore/jwt"
	"github.com/lingolab/authcore/password"
	"github.com/lingolab/authcore/permission"
)

// Builder assembles an [Engine]. Builders are single-use.
type Builder struct {
	config Config

	store    AccountStore
	notifier NotificationSender
	table    permission.Table
	sink     audit.Sink
	logger   *zap.Logger

	built bool
}

// New starts a builder with [DefaultConfig].
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the account persistence collaborator. Required.
func (b *Builder) WithStore(store AccountStore) *Builder {
	b.store = store
	return b
}

// WithNotifier sets the email collaborator. Required.
func (b *Builder) WithNotifier(n NotificationSender) *Builder {
	b.notifier = n
	return b
}

// WithPermissionTable overrides [permission.DefaultTable].
func (b *Builder) WithPermissionTable(t permission.Table) *Builder {
	b.table = t
	return b
}

// WithAuditSink sets the security-event consumer and enables auditing.
func (b *Builder) WithAuditSink(sink audit.Sink) *Builder {
	b.sink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithLogger sets the diagnostic logger (default zap.NewNop).
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires the collaborators, and
// returns a ready engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if b.store == nil {
		return nil, errors.New("account store is required")
	}
	if b.notifier == nil {
		return nil, errors.New("notification sender is required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
		Pepper:      b.config.Password.Pepper,
	})
	if err != nil {
		return nil, err
	}

	codec, err := jwt.NewManager(jwt.Config{
		Issuer:        b.config.JWT.Issuer,
		Audience:      b.config.JWT.Audience,
		AccessSecret:  b.config.JWT.AccessSecret,
		RefreshSecret: b.config.JWT.RefreshSecret,
		AccessTTL:     b.config.JWT.AccessTTL,
		RefreshTTL:    b.config.JWT.RefreshTTL,
		Leeway:        b.config.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	table := b.table
	if table == nil {
		table = permission.DefaultTable()
	}
	resolver, err := permission.NewResolver(table)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		config:   b.config,
		store:    b.store,
		notifier: b.notifier,
		hasher:   hasher,
		codec:    codec,
		resolver: resolver,
		lockout: limiters.Lockout{
			Threshold: b.config.Lockout.Threshold,
			Duration:  b.config.Lockout.Duration,
		},
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    b.config.Audit.Enabled,
			BufferSize: b.config.Audit.BufferSize,
			DropIfFull: b.config.Audit.DropIfFull,
		}, b.sink),
		metrics: NewMetrics(b.config.Metrics),
		logger:  logger,
		now:     time.Now,
	}, nil
}
