package session

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateKeyCreatesOnce(t *testing.T) {
	t.Setenv(KeyEnv, "")
	path := filepath.Join(t.TempDir(), "nested", "session.key")

	k1, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	assert.Len(t, k1, 32)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	k2, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestLoadOrCreateKeyFromEnv(t *testing.T) {
	want := strings.Repeat("ab", 32)
	t.Setenv(KeyEnv, want)

	k, err := LoadOrCreateKey(filepath.Join(t.TempDir(), "unused.key"))
	require.NoError(t, err)
	assert.Equal(t, want, hex.EncodeToString(k))

	t.Setenv(KeyEnv, "abcd")
	_, err = LoadOrCreateKey("unused")
	assert.Error(t, err)
}

func TestDeriveKeyDependsOnFingerprint(t *testing.T) {
	master := make([]byte, 32)
	a, err := DeriveKey(master, "laptop-a")
	require.NoError(t, err)
	b, err := DeriveKey(master, "laptop-b")
	require.NoError(t, err)
	again, err := DeriveKey(master, "laptop-a")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, again)

	_, err = DeriveKey([]byte("short"), "x")
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestSealOpenBindsFieldName(t *testing.T) {
	key := make([]byte, 32)
	blob, err := seal(key, KeyAccessToken, []byte("secret"))
	require.NoError(t, err)

	plain, err := open(key, KeyAccessToken, blob)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(plain))

	_, err = open(key, KeyUsername, blob)
	assert.Error(t, err)
	_, err = open(key, KeyAccessToken, blob[:4])
	assert.Error(t, err)
}
