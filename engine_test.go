package authcore

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

/*
====================================
TEST FIXTURES
====================================
*/

// memStore is a minimal in-process AccountStore for engine tests. The
// production stores live in accountstore; importing them here would
// cycle, and the engine only needs the documented contract anyway.
type memStore struct {
	mu   sync.Mutex
	docs map[string]*Account
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]*Account)}
}

func (s *memStore) find(match func(*Account) bool) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.docs {
		if match(a) {
			return a.Clone(), nil
		}
	}
	return nil, ErrAccountNotFound
}

func (s *memStore) FindByID(_ context.Context, id string) (*Account, error) {
	return s.find(func(a *Account) bool { return a.ID == id })
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	return s.find(func(a *Account) bool { return a.Email == email })
}

func (s *memStore) FindByUsername(_ context.Context, username string) (*Account, error) {
	return s.find(func(a *Account) bool { return a.Username == username })
}

func (s *memStore) FindByPhone(_ context.Context, phone string) (*Account, error) {
	return s.find(func(a *Account) bool { return a.Phone != "" && a.Phone == phone })
}

func (s *memStore) FindByExternalID(_ context.Context, provider AuthProvider, externalID string) (*Account, error) {
	return s.find(func(a *Account) bool {
		return a.ExternalID != "" && a.ExternalID == externalID && a.Provider == provider
	})
}

func (s *memStore) FindByResetTokenHash(_ context.Context, hash string) (*Account, error) {
	return s.find(func(a *Account) bool { return a.ResetTokenHash != "" && a.ResetTokenHash == hash })
}

func (s *memStore) FindByVerificationTokenHash(_ context.Context, hash string) (*Account, error) {
	return s.find(func(a *Account) bool {
		return a.VerificationTokenHash != "" && a.VerificationTokenHash == hash
	})
}

func (s *memStore) Create(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.docs {
		switch {
		case a.Email == account.Email:
			return ErrEmailTaken
		case a.Username == account.Username:
			return ErrUsernameTaken
		case account.Phone != "" && a.Phone == account.Phone:
			return ErrPhoneTaken
		}
	}
	stored := account.Clone()
	stored.Version = 1
	s.docs[stored.ID] = stored
	account.Version = 1
	return nil
}

func (s *memStore) Save(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.docs[account.ID]
	if !ok {
		return ErrAccountNotFound
	}
	if current.Version != account.Version {
		return ErrVersionConflict
	}
	stored := account.Clone()
	stored.Version++
	s.docs[stored.ID] = stored
	account.Version = stored.Version
	return nil
}

// raw returns the stored document without cloning, for direct test
// mutation (e.g. forcing a status or a stale lock).
func (s *memStore) raw(t *testing.T, id string) *Account {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.docs[id]
	if !ok {
		t.Fatalf("no stored account %q", id)
	}
	return a
}

type fakeNotifier struct {
	mu                sync.Mutex
	verification      map[string]string
	reset             map[string]string
	verificationErr   error
	resetErr          error
	verificationCalls int
	resetCalls        int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		verification: make(map[string]string),
		reset:        make(map[string]string),
	}
}

func (n *fakeNotifier) SendVerificationEmail(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verificationCalls++
	if n.verificationErr != nil {
		return n.verificationErr
	}
	n.verification[email] = token
	return nil
}

func (n *fakeNotifier) SendPasswordResetEmail(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetCalls++
	if n.resetErr != nil {
		return n.resetErr
	}
	n.reset[email] = token
	return nil
}

func (n *fakeNotifier) verificationToken(t *testing.T, email string) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	token, ok := n.verification[email]
	if !ok {
		t.Fatalf("no verification token delivered to %q", email)
	}
	return token
}

func (n *fakeNotifier) resetToken(t *testing.T, email string) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	token, ok := n.reset[email]
	if !ok {
		t.Fatalf("no reset token delivered to %q", email)
	}
	return token
}

// testClock drives lockout and expiry windows. It starts at the real
// wall clock so token signing (which always uses real time) stays in
// step until a test advances it.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestEngine(t *testing.T, mutate ...func(*Config)) (*Engine, *memStore, *fakeNotifier, *testClock) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret-0123456789abcdef")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret-0123456789abcde")
	// Smallest parameters the hasher accepts; production defaults make
	// the suite crawl.
	cfg.Password.Memory = 16 * 1024
	cfg.Password.Time = 2
	cfg.Password.Parallelism = 1
	cfg.Password.KeyLength = 16
	cfg.Metrics.Enabled = true
	for _, m := range mutate {
		m(&cfg)
	}

	store := newMemStore()
	notifier := newFakeNotifier()

	engine, err := New().
		WithConfig(cfg).
		WithStore(store).
		WithNotifier(notifier).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	clock := &testClock{t: time.Now()}
	engine.now = clock.Now

	return engine, store, notifier, clock
}

const testPassword = "correct-horse"

func registerUser(t *testing.T, e *Engine, email string) *AuthResult {
	t.Helper()
	res, err := e.Register(context.Background(), RegisterInput{
		Email:    email,
		Username: strings.SplitN(email, "@", 2)[0],
		Name:     "Test User",
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return res
}
