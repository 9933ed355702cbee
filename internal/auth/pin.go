package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/service-marketplace/internal/config"
)

// Hasher turns a PIN into its stored digest and checks candidates against it.
type Hasher interface {
	Hash(pin string) (string, error)
	Verify(digest, pin string) bool
}

// SHA256Hasher produces unsalted lowercase hex SHA-256 digests.
// Identical PINs share a digest across accounts; it exists for compatibility
// with accounts created by the mobile client.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(pin string) (string, error) {
	return HashPIN(pin), nil
}

func (SHA256Hasher) Verify(digest, pin string) bool {
	return subtle.ConstantTimeCompare([]byte(digest), []byte(HashPIN(pin))) == 1
}

// BcryptHasher salts every digest.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(pin string) (string, error) {
	cost := h.Cost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h BcryptHasher) Verify(digest, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(pin)) == nil
}

// NewHasher returns the hasher for the configured scheme.
func NewHasher(scheme string, bcryptCost int) (Hasher, error) {
	switch scheme {
	case config.PINHashSHA256, "":
		return SHA256Hasher{}, nil
	case config.PINHashBcrypt:
		return BcryptHasher{Cost: bcryptCost}, nil
	default:
		return nil, fmt.Errorf("unknown pin hash scheme %q", scheme)
	}
}

// HashPIN returns the lowercase hex SHA-256 digest of pin.
func HashPIN(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// GeneratePIN returns a uniformly random PIN in [1000, 9999].
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}
