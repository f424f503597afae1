package session

import (
	"bytes"
	"crypto/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/harrylevesque/campusclinic/internal/models"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := rand.Read(k)
	require.NoError(t, err)
	return k
}

var alice = Session{
	UserID:         "17",
	AccessToken:    "tok-alice",
	Role:           models.RoleStudent,
	FirstName:      "Alice",
	Username:       "alice",
	ProfilePicture: "https://cdn.example/alice.png",
}

func TestSaveLoadSurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	key := testKey(t)

	s, err := Open(dir, key)
	require.NoError(t, err)
	require.NoError(t, s.Save(alice))
	require.NoError(t, s.Close())

	s, err = Open(dir, key)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, alice, got)
	assert.True(t, got.LoggedIn())
}

func TestTokenNotStoredInPlaintext(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	s, err := Open(dir, testKey(t))
	require.NoError(t, err)
	require.NoError(t, s.Save(alice))
	require.NoError(t, s.Close())

	db, err := leveldb.OpenFile(dir, nil)
	require.NoError(t, err)
	defer db.Close()

	raw, err := db.Get([]byte(KeyAccessToken), nil)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte(alice.AccessToken)))

	name, err := db.Get([]byte(KeyUsername), nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", string(name))
}

func TestWrongKeyReadsAsLoggedOut(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	s, err := Open(dir, testKey(t))
	require.NoError(t, err)
	require.NoError(t, s.Save(alice))
	require.NoError(t, s.Close())

	s, err = Open(dir, testKey(t))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(KeyAccessToken)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.Load()
	require.NoError(t, err)
	assert.False(t, got.LoggedIn())
	assert.Equal(t, "alice", got.Username)
}

func TestSetGetDeleteClear(t *testing.T) {
	s, err := OpenMemory(testKey(t))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(KeyRole)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(KeyRole, "admin"))
	require.NoError(t, s.Set(KeyRole, "student"))
	v, err := s.Get(KeyRole)
	require.NoError(t, err)
	assert.Equal(t, "student", v)

	require.NoError(t, s.Set(KeyAccessToken, "abc"))
	v, err = s.Get(KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	require.NoError(t, s.Delete(KeyRole))
	_, err = s.Get(KeyRole)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(alice))
	require.NoError(t, s.Clear())
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Session{}, got)
}

func TestSaveEmptyFieldRemovesIt(t *testing.T) {
	s, err := OpenMemory(testKey(t))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(alice))
	updated := alice
	updated.ProfilePicture = ""
	require.NoError(t, s.Save(updated))

	_, err = s.Get(KeyProfilePicture)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenRejectsShortKey(t *testing.T) {
	_, err := Open(t.TempDir(), []byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestFromLogin(t *testing.T) {
	s := FromLogin(models.LoginResult{ID: "3", Access: "t", Role: models.RoleAdmin, FirstName: "Nurse", Username: "nurse"})
	assert.Equal(t, Session{UserID: "3", AccessToken: "t", Role: models.RoleAdmin, FirstName: "Nurse", Username: "nurse"}, s)
}

func TestTokenEmptyWhenLoggedOut(t *testing.T) {
	s, err := OpenMemory(testKey(t))
	require.NoError(t, err)
	defer s.Close()

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Save(alice))
	tok, err = s.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-alice", tok)
}
