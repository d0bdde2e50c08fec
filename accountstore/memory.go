package accountstore

import (
	"context"
	"strings"
	"sync"

	authcore "github.com/lingolab/authcore"
)

// Memory is an in-process AccountStore. Accounts are deep-cloned on
// every boundary so callers never share state with the store.
type Memory struct {
	mu         sync.Mutex
	byID       map[string]*authcore.Account
	byEmail    map[string]string
	byUsername map[string]string
	byPhone    map[string]string
	byExternal map[string]string
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		byID:       make(map[string]*authcore.Account),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
		byPhone:    make(map[string]string),
		byExternal: make(map[string]string),
	}
}

func externalKey(provider authcore.AuthProvider, externalID string) string {
	return string(provider) + ":" + externalID
}

func (m *Memory) FindByID(ctx context.Context, id string) (*authcore.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.byID[id]
	if !ok {
		return nil, authcore.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (m *Memory) FindByEmail(ctx context.Context, email string) (*authcore.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byIndexLocked(m.byEmail, strings.ToLower(email))
}

func (m *Memory) FindByUsername(ctx context.Context, username string) (*authcore.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byIndexLocked(m.byUsername, username)
}

func (m *Memory) FindByPhone(ctx context.Context, phone string) (*authcore.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byIndexLocked(m.byPhone, phone)
}

func (m *Memory) FindByExternalID(ctx context.Context, provider authcore.AuthProvider, externalID string) (*authcore.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byIndexLocked(m.byExternal, externalKey(provider, externalID))
}

func (m *Memory) FindByResetTokenHash(ctx context.Context, hash string) (*authcore.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, account := range m.byID {
		if hash != "" && account.ResetTokenHash == hash {
			return account.Clone(), nil
		}
	}
	return nil, authcore.ErrAccountNotFound
}

func (m *Memory) FindByVerificationTokenHash(ctx context.Context, hash string) (*authcore.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, account := range m.byID {
		if hash != "" && account.VerificationTokenHash == hash {
			return account.Clone(), nil
		}
	}
	return nil, authcore.ErrAccountNotFound
}

func (m *Memory) byIndexLocked(index map[string]string, key string) (*authcore.Account, error) {
	id, ok := index[key]
	if !ok {
		return nil, authcore.ErrAccountNotFound
	}
	return m.byID[id].Clone(), nil
}

// Create inserts a new account at version 1, enforcing the uniqueness
// indexes.
func (m *Memory) Create(ctx context.Context, account *authcore.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(account.Email)
	if _, exists := m.byEmail[email]; exists {
		return authcore.ErrEmailTaken
	}
	if _, exists := m.byUsername[account.Username]; exists {
		return authcore.ErrUsernameTaken
	}
	if account.Phone != "" {
		if _, exists := m.byPhone[account.Phone]; exists {
			return authcore.ErrPhoneTaken
		}
	}

	stored := account.Clone()
	stored.Version = 1
	m.byID[stored.ID] = stored
	m.indexLocked(stored)

	account.Version = 1
	return nil
}

// Save replaces the stored document iff the caller's version matches.
func (m *Memory) Save(ctx context.Context, account *authcore.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.byID[account.ID]
	if !ok {
		return authcore.ErrAccountNotFound
	}
	if current.Version != account.Version {
		return authcore.ErrVersionConflict
	}

	m.unindexLocked(current)
	stored := account.Clone()
	stored.Version = current.Version + 1
	m.byID[stored.ID] = stored
	m.indexLocked(stored)

	account.Version = stored.Version
	return nil
}

func (m *Memory) indexLocked(a *authcore.Account) {
	m.byEmail[strings.ToLower(a.Email)] = a.ID
	m.byUsername[a.Username] = a.ID
	if a.Phone != "" {
		m.byPhone[a.Phone] = a.ID
	}
	if a.ExternalID != "" {
		m.byExternal[externalKey(a.Provider, a.ExternalID)] = a.ID
	}
}

func (m *Memory) unindexLocked(a *authcore.Account) {
	delete(m.byEmail, strings.ToLower(a.Email))
	delete(m.byUsername, a.Username)
	if a.Phone != "" {
		delete(m.byPhone, a.Phone)
	}
	if a.ExternalID != "" {
		delete(m.byExternal, externalKey(a.Provider, a.ExternalID))
	}
}
