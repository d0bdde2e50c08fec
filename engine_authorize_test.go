package authcore

import (
	"context"
	"errors"
	"testing"

	"github.com/lingolab/authcore/permission"
)

func TestAuthorizeResolvesIdentity(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	reg := registerUser(t, engine, "alice@example.com")

	identity, err := engine.Authorize(context.Background(), reg.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}

	if identity.AccountID != reg.User.ID {
		t.Errorf("accountID = %q, want %q", identity.AccountID, reg.User.ID)
	}
	if len(identity.Roles) != 1 || identity.Roles[0] != permission.RoleStudent {
		t.Errorf("roles = %v, want [student]", identity.Roles)
	}
	if !identity.HasPermission(permission.CourseView) {
		t.Error("student must hold course:view")
	}
	if identity.HasPermission(permission.CourseCreate) {
		t.Error("student must not hold course:create")
	}
}

func TestAuthorizeRoleCapabilities(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := engine.Register(ctx, RegisterInput{
		Email: "admin@example.com", Username: "admin", Name: "Admin", Password: testPassword,
		Roles: []permission.Role{permission.RoleAdmin},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	identity, err := engine.Authorize(ctx, res.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	for _, p := range []permission.Permission{
		permission.CourseView,
		permission.CourseCreate,
		permission.AdminPanel,
	} {
		if !identity.HasPermission(p) {
			t.Errorf("admin missing %q", p)
		}
	}
}

func TestAuthorizeRejectsGarbage(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	if _, err := engine.Authorize(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: %v, want ErrInvalidToken", err)
	}
}

func TestAuthorizeRejectsRefreshToken(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	reg := registerUser(t, engine, "alice@example.com")

	if _, err := engine.Authorize(context.Background(), reg.Tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh token as access: %v, want ErrInvalidToken", err)
	}
}

func TestAuthorizeRejectsForeignSignature(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	foreign, _, _, _ := newTestEngine(t, func(cfg *Config) {
		cfg.JWT.AccessSecret = []byte("a-completely-different-secret-value!")
	})
	reg := registerUser(t, foreign, "alice@example.com")

	if _, err := engine.Authorize(context.Background(), reg.Tokens.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign token: %v, want ErrInvalidToken", err)
	}
}

func TestAuthorizeUnknownAccount(t *testing.T) {
	// A signed token for an account the store has never seen, as after a
	// hard delete.
	engine, store, _, _ := newTestEngine(t)
	reg := registerUser(t, engine, "alice@example.com")

	store.mu.Lock()
	delete(store.docs, reg.User.ID)
	store.mu.Unlock()

	if _, err := engine.Authorize(context.Background(), reg.Tokens.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("deleted account: %v, want ErrInvalidToken", err)
	}
}

func TestAuthorizeDisabledAccount(t *testing.T) {
	engine, store, _, _ := newTestEngine(t)
	reg := registerUser(t, engine, "alice@example.com")

	store.raw(t, reg.User.ID).Status = StatusBanned
	if _, err := engine.Authorize(context.Background(), reg.Tokens.AccessToken); !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("banned account: %v, want ErrAccountDisabled", err)
	}
}

func TestAuthorizeStaleTokenVersion(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	reg := registerUser(t, engine, "alice@example.com")
	ctx := context.Background()

	if err := engine.ChangePassword(ctx, reg.User.ID, testPassword, "new-password-1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := engine.Authorize(ctx, reg.Tokens.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("stale tokenVersion: %v, want ErrTokenRevoked", err)
	}
}

func TestAuthorizeLatencyHistogram(t *testing.T) {
	engine, _, _, _ := newTestEngine(t, func(cfg *Config) {
		cfg.Metrics.EnableLatencyHistograms = true
	})
	reg := registerUser(t, engine, "alice@example.com")

	if _, err := engine.Authorize(context.Background(), reg.Tokens.AccessToken); err != nil {
		t.Fatalf("Authorize: %v", err)
	}

	snap := engine.MetricsSnapshot()
	var total uint64
	for _, n := range snap.Histograms[MetricAuthorizeLatency] {
		total += n
	}
	if total != 1 {
		t.Errorf("latency observations = %d, want 1", total)
	}
}
