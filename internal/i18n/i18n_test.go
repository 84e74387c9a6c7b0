// internal/i18n/i18n_test.go
package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tr, err := New("ko")
	require.NoError(t, err)

	assert.Equal(t, "구매확정", tr.T("ko", KeyStatusConfirmed))
	assert.Equal(t, "Confirmed", tr.T("en", KeyStatusConfirmed))
	assert.Equal(t, "3일 후 자동 구매확정", tr.T("ko", KeyAutoConfirmCountdown, 3))
}

func TestTranslateFallbacks(t *testing.T) {
	tr, err := New("ko")
	require.NoError(t, err)

	// Unknown language falls back to the default
	assert.Equal(t, "결제대기", tr.T("fr", KeyStatusPending))
	// Empty language uses the default
	assert.Equal(t, "결제대기", tr.T("", KeyStatusPending))
	// Unknown key is returned verbatim
	assert.Equal(t, "no.such.key", tr.T("en", "no.such.key"))
}

func TestLocalesShareKeys(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	for key := range tr.catalogs["en"] {
		assert.True(t, tr.Has("ko", key), "ko locale is missing %s", key)
	}
}

func TestNewRejectsMissingDefault(t *testing.T) {
	_, err := New("fr")
	assert.Error(t, err)

	tr, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "ko", tr.DefaultLang())
	assert.Equal(t, []string{"en", "ko"}, tr.Languages())
}
