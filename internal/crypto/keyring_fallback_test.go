//go:build !darwin

package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackKeyring_FileSecrets(t *testing.T) {
	k := NewKeyring(t.TempDir())

	_, err := k.Get(KeySession)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, k.Set(KeySession, "token-value"))
	got, err := k.Get(KeySession)
	require.NoError(t, err)
	assert.Equal(t, "token-value", got)

	require.NoError(t, k.Delete(KeySession))
	require.NoError(t, k.Delete(KeySession), "deleting twice is fine")
	_, err = k.Get(KeySession)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFallbackKeyring_DBKeyFromEnv(t *testing.T) {
	k := NewKeyring(t.TempDir())

	t.Setenv("INVOICER_DB_KEY", "")
	assert.False(t, k.IsAvailable())
	_, err := k.Get(KeyDB)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Error(t, k.Set(KeyDB, "secret"))

	t.Setenv("INVOICER_DB_KEY", "from-env")
	assert.True(t, k.IsAvailable())
	got, err := k.Get(KeyDB)
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}

func TestGetOrCreate(t *testing.T) {
	t.Setenv("INVOICER_TOKEN_SECRET", "")
	k := NewKeyring(t.TempDir())

	first, err := GetOrCreate(k, KeyTokenSecret)
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := GetOrCreate(k, KeyTokenSecret)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
