// internal/utils/crypto_test.go
package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePaymentID(t *testing.T) {
	now := time.UnixMilli(1718000000123)
	id := GeneratePaymentID(now)
	assert.Regexp(t, regexp.MustCompile(`^payment-1718000000123-[0-9a-f]{9}$`), id)
	assert.NotEqual(t, id, GeneratePaymentID(now))
}

func TestSealOpen(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	key, err := DeriveKey("passphrase", salt)
	require.NoError(t, err)

	sealed, err := Seal(key, []byte("token-value"))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "token-value")

	plain, err := Open(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, "token-value", string(plain))

	other, err := DeriveKey("wrong", salt)
	require.NoError(t, err)
	_, err = Open(other, sealed)
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = Open(key, []byte("short"))
	assert.ErrorIs(t, err, ErrDecrypt)
}
