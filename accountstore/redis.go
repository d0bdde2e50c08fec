package accountstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	authcore "github.com/lingolab/authcore"
)

// Redis stores accounts as JSON documents with a version counter and a
// set of unique secondary-index keys, all kept consistent by two Lua
// scripts so index and document never diverge mid-operation.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis wraps an existing client. prefix namespaces every key and
// defaults to "ac".
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "ac"
	}
	return &Redis{client: client, prefix: prefix}
}

// createScript inserts a document iff none of its index keys exist.
// Returns 0 on success or the KEYS position of the first taken index.
const createScript = `
for i = 3, #KEYS do
  if redis.call('EXISTS', KEYS[i]) == 1 then
    return i
  end
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], '1')
for i = 3, #KEYS do
  redis.call('SET', KEYS[i], ARGV[2])
end
return 0
`

var createLua = redis.NewScript(createScript)

// saveScript swaps the document iff the version key still matches,
// retiring stale index keys and writing the new ones in the same step.
// Returns 1 on success, 0 on version conflict, -1 when the account is
// gone.
const saveScript = `
local ver = redis.call('GET', KEYS[2])
if not ver then
  return -1
end
if ver ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[2], tostring(tonumber(ARGV[1]) + 1))
redis.call('SET', KEYS[1], ARGV[2])
local numDel = tonumber(ARGV[3])
for i = 3, 2 + numDel do
  redis.call('DEL', KEYS[i])
end
for i = 3 + numDel, #KEYS do
  redis.call('SET', KEYS[i], ARGV[4])
end
return 1
`

var saveLua = redis.NewScript(saveScript)

// errIndexConflict covers collisions on indexes that should never
// collide for distinct accounts (external id, token hashes).
var errIndexConflict = fmt.Errorf("%w: unique index conflict", authcore.ErrStoreUnavailable)

func (r *Redis) docKey(id string) string { return r.prefix + ":doc:" + id }
func (r *Redis) verKey(id string) string { return r.prefix + ":ver:" + id }

func (r *Redis) indexKey(kind, value string) string {
	return r.prefix + ":idx:" + kind + ":" + value
}

// indexKeys lists the unique index entries a document occupies, paired
// with the conflict error each one maps to.
func (r *Redis) indexKeys(a *authcore.Account) ([]string, []error) {
	keys := []string{
		r.indexKey("email", a.Email),
		r.indexKey("username", a.Username),
	}
	conflicts := []error{authcore.ErrEmailTaken, authcore.ErrUsernameTaken}

	if a.Phone != "" {
		keys = append(keys, r.indexKey("phone", a.Phone))
		conflicts = append(conflicts, authcore.ErrPhoneTaken)
	}
	if a.ExternalID != "" {
		keys = append(keys, r.indexKey("ext", string(a.Provider)+":"+a.ExternalID))
		conflicts = append(conflicts, errIndexConflict)
	}
	if a.ResetTokenHash != "" {
		keys = append(keys, r.indexKey("reset", a.ResetTokenHash))
		conflicts = append(conflicts, errIndexConflict)
	}
	if a.VerificationTokenHash != "" {
		keys = append(keys, r.indexKey("verify", a.VerificationTokenHash))
		conflicts = append(conflicts, errIndexConflict)
	}
	return keys, conflicts
}

func (r *Redis) FindByID(ctx context.Context, id string) (*authcore.Account, error) {
	return r.getDoc(ctx, r.docKey(id))
}

func (r *Redis) FindByEmail(ctx context.Context, email string) (*authcore.Account, error) {
	return r.findByIndex(ctx, r.indexKey("email", email))
}

func (r *Redis) FindByUsername(ctx context.Context, username string) (*authcore.Account, error) {
	return r.findByIndex(ctx, r.indexKey("username", username))
}

func (r *Redis) FindByPhone(ctx context.Context, phone string) (*authcore.Account, error) {
	return r.findByIndex(ctx, r.indexKey("phone", phone))
}

func (r *Redis) FindByExternalID(ctx context.Context, provider authcore.AuthProvider, externalID string) (*authcore.Account, error) {
	return r.findByIndex(ctx, r.indexKey("ext", string(provider)+":"+externalID))
}

func (r *Redis) FindByResetTokenHash(ctx context.Context, hash string) (*authcore.Account, error) {
	return r.findByIndex(ctx, r.indexKey("reset", hash))
}

func (r *Redis) FindByVerificationTokenHash(ctx context.Context, hash string) (*authcore.Account, error) {
	return r.findByIndex(ctx, r.indexKey("verify", hash))
}

func (r *Redis) findByIndex(ctx context.Context, indexKey string) (*authcore.Account, error) {
	id, err := r.client.Get(ctx, indexKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, authcore.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authcore.ErrStoreUnavailable, err)
	}
	return r.getDoc(ctx, r.docKey(id))
}

func (r *Redis) getDoc(ctx context.Context, docKey string) (*authcore.Account, error) {
	raw, err := r.client.Get(ctx, docKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, authcore.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authcore.ErrStoreUnavailable, err)
	}

	var account authcore.Account
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("%w: corrupt account document: %v", authcore.ErrStoreUnavailable, err)
	}
	return &account, nil
}

func (r *Redis) Create(ctx context.Context, account *authcore.Account) error {
	doc := account.Clone()
	doc.Version = 1

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}

	indexKeys, conflicts := r.indexKeys(doc)
	keys := append([]string{r.docKey(doc.ID), r.verKey(doc.ID)}, indexKeys...)

	res, err := createLua.Run(ctx, r.client, keys, raw, doc.ID).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", authcore.ErrStoreUnavailable, err)
	}
	if res != 0 {
		// res is the KEYS position of the taken index; positions start
		// at 3 because doc and version keys come first.
		i := res - 3
		if i >= 0 && i < len(conflicts) {
			return conflicts[i]
		}
		return authcore.ErrStoreUnavailable
	}

	account.Version = 1
	return nil
}

func (r *Redis) Save(ctx context.Context, account *authcore.Account) error {
	// The current document (same version the caller read) tells us
	// which index keys to retire.
	current, err := r.getDoc(ctx, r.docKey(account.ID))
	if err != nil {
		return err
	}
	if current.Version != account.Version {
		return authcore.ErrVersionConflict
	}

	doc := account.Clone()
	doc.Version = account.Version + 1
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}

	oldKeys, _ := r.indexKeys(current)
	newKeys, _ := r.indexKeys(doc)
	del := difference(oldKeys, newKeys)
	set := difference(newKeys, oldKeys)

	keys := make([]string, 0, 2+len(del)+len(set))
	keys = append(keys, r.docKey(doc.ID), r.verKey(doc.ID))
	keys = append(keys, del...)
	keys = append(keys, set...)

	res, err := saveLua.Run(ctx, r.client, keys,
		strconv.FormatInt(account.Version, 10), raw, len(del), doc.ID).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", authcore.ErrStoreUnavailable, err)
	}
	switch res {
	case 1:
		account.Version = doc.Version
		return nil
	case 0:
		return authcore.ErrVersionConflict
	default:
		return authcore.ErrAccountNotFound
	}
}

func difference(a, b []string) []string {
	out := make([]string, 0, len(a))
	for _, k := range a {
		found := false
		for _, other := range b {
			if k == other {
				found = true
				break
			}
		}
		if !found {
			out = append(out, k)
		}
	}
	return out
}
