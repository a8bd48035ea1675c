package repository

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifyPassword(t *testing.T) {
	bcryptDigest, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	sum := sha256.Sum256([]byte("secret"))
	legacy := hex.EncodeToString(sum[:])

	tests := []struct {
		name     string
		password string
		digest   string
		want     bool
	}{
		{name: "bcrypt match", password: "secret", digest: bcryptDigest, want: true},
		{name: "bcrypt mismatch", password: "Secret", digest: bcryptDigest, want: false},
		{name: "legacy match", password: "secret", digest: legacy, want: true},
		{name: "legacy upper-case digest", password: "secret", digest: strings.ToUpper(legacy), want: true},
		{name: "legacy mismatch", password: "wrong", digest: legacy, want: false},
		{name: "empty digest", password: "", digest: "", want: false},
		{name: "garbage digest", password: "secret", digest: "not-a-digest", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.password, tt.digest))
		})
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	a, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "secret")
}
