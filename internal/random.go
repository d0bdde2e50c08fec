package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const actionTokenSize = 32

// NewJTI returns a fresh refresh-session identifier. UUIDv4 carries 122
// random bits, comfortably past the collision bar for per-account lists.
func NewJTI() string {
	return uuid.NewString()
}

// NewActionToken mints an opaque single-use token for email verification
// and password reset links. The hex plaintext goes into the notification;
// only its hash is ever persisted.
func NewActionToken() (string, error) {
	raw := make([]byte, actionTokenSize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate action token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// HashActionToken returns the storage form of an action token.
func HashActionToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// SynthesizeUsername derives a username for accounts created through a
// federated identity that supplies no username of its own: the email
// local part plus a 6-digit random suffix.
func SynthesizeUsername(email string) (string, error) {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}

	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate username suffix: %w", err)
	}
	return fmt.Sprintf("%s_%06d", strings.ToLower(local), n.Int64()), nil
}
