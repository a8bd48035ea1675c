package repository

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// legacyDigest matches the unsalted SHA-256 hex digests written by older
// clients.
var legacyDigest = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// HashPassword returns a bcrypt digest of password at cost.
func HashPassword(password string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword reports whether password matches digest. Both bcrypt and
// legacy SHA-256 hex digests are accepted.
func VerifyPassword(password, digest string) bool {
	if digest == "" {
		return false
	}
	if legacyDigest.MatchString(digest) {
		sum := sha256.Sum256([]byte(password))
		want := strings.ToLower(digest)
		return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(want)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
