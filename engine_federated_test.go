package authcore

import (
	"context"
	"errors"
	"regexp"
	"testing"
)

func googleProfile(externalID, email string) ExternalProfile {
	return ExternalProfile{
		Provider:   ProviderGoogle,
		ExternalID: externalID,
		Email:      email,
		Name:       "Alice Example",
		AvatarURL:  "https://avatars.example.com/alice.png",
	}
}

func TestFederatedLoginCreatesAccount(t *testing.T) {
	engine, store, _, _ := newTestEngine(t)

	res, err := engine.FederatedLogin(context.Background(), googleProfile("g-123", "Alice@Example.com"))
	if err != nil {
		t.Fatalf("FederatedLogin: %v", err)
	}

	if res.User.Status != StatusActive {
		t.Errorf("status = %q, want active", res.User.Status)
	}
	if !res.User.EmailVerified {
		t.Error("provider-attested email must arrive verified")
	}
	if res.User.Provider != ProviderGoogle {
		t.Errorf("provider = %q, want google", res.User.Provider)
	}
	if res.User.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", res.User.Email)
	}
	if ok, _ := regexp.MatchString(`^alice_[0-9]{6}$`, res.User.Username); !ok {
		t.Errorf("username = %q, want synthesized alice_nnnnnn", res.User.Username)
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Error("federated login must issue a token pair")
	}

	stored := store.raw(t, res.User.ID)
	if stored.ExternalID != "g-123" {
		t.Errorf("externalID = %q", stored.ExternalID)
	}
	if stored.CredentialHash != "" {
		t.Error("federated accounts carry no password hash")
	}
}

func TestFederatedLoginFindsExistingByExternalID(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := engine.FederatedLogin(ctx, googleProfile("g-123", "alice@example.com"))
	if err != nil {
		t.Fatalf("first FederatedLogin: %v", err)
	}
	second, err := engine.FederatedLogin(ctx, googleProfile("g-123", "alice@example.com"))
	if err != nil {
		t.Fatalf("second FederatedLogin: %v", err)
	}

	if second.User.ID != first.User.ID {
		t.Errorf("repeat login created a new account: %q vs %q", second.User.ID, first.User.ID)
	}
	if second.User.TotalLogins != 2 {
		t.Errorf("totalLogins = %d, want 2", second.User.TotalLogins)
	}
}

func TestFederatedLoginLinksByEmail(t *testing.T) {
	engine, store, _, _ := newTestEngine(t)
	reg := registerUser(t, engine, "alice@example.com")
	ctx := context.Background()

	res, err := engine.FederatedLogin(ctx, googleProfile("g-123", "alice@example.com"))
	if err != nil {
		t.Fatalf("FederatedLogin: %v", err)
	}
	if res.User.ID != reg.User.ID {
		t.Fatalf("linking created a new account: %q vs %q", res.User.ID, reg.User.ID)
	}

	stored := store.raw(t, reg.User.ID)
	if stored.ExternalID != "g-123" || stored.Provider != ProviderGoogle {
		t.Errorf("link not recorded: externalID=%q provider=%q", stored.ExternalID, stored.Provider)
	}
	// The provider vouched for the address, so the pending verification
	// collapses.
	if !stored.EmailVerified {
		t.Error("linked account must be verified")
	}
	if stored.Status != StatusActive {
		t.Errorf("status = %q, want active", stored.Status)
	}
	if stored.VerificationTokenHash != "" {
		t.Error("stale verification token must be cleared")
	}
	// The local password still works after linking.
	if _, err := engine.Login(ctx, "alice@example.com", testPassword); err != nil {
		t.Errorf("local login after link: %v", err)
	}
}

func TestFederatedLoginDisabledAccount(t *testing.T) {
	engine, store, _, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := engine.FederatedLogin(ctx, googleProfile("g-123", "alice@example.com"))
	if err != nil {
		t.Fatalf("FederatedLogin: %v", err)
	}

	store.raw(t, res.User.ID).Status = StatusBanned
	if _, err := engine.FederatedLogin(ctx, googleProfile("g-123", "alice@example.com")); !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("banned federated login: %v, want ErrAccountDisabled", err)
	}
}

func TestFederatedLoginRejectsIncompleteProfile(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	cases := map[string]ExternalProfile{
		"missing provider":    {ExternalID: "g-123", Email: "a@b.com"},
		"missing external id": {Provider: ProviderGoogle, Email: "a@b.com"},
		"missing email":       {Provider: ProviderGoogle, ExternalID: "g-123"},
	}
	for name, profile := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := engine.FederatedLogin(ctx, profile); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("FederatedLogin = %v, want ErrInvalidInput", err)
			}
		})
	}
}
