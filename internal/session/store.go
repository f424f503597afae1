// Package session persists the signed-in user's token, role and display
// fields in a LevelDB directory under the clinic home.
package session

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"go.uber.org/zap"

	"github.com/harrylevesque/campusclinic/internal/models"
)

// Keys held by the store.
const (
	KeyID             = "id"
	KeyAccessToken    = "access_token"
	KeyRole           = "role"
	KeyFirstName      = "first_name"
	KeyUsername       = "username"
	KeyProfilePicture = "profile_picture"
)

var keys = []string{KeyID, KeyAccessToken, KeyRole, KeyFirstName, KeyUsername, KeyProfilePicture}

// sealed lists the keys encrypted at rest.
var sealed = map[string]bool{KeyAccessToken: true}

var ErrNotFound = errors.New("session: key not found")

// Session is the signed-in user as the rest of the client sees it.
type Session struct {
	UserID         models.ID
	AccessToken    string
	Role           models.Role
	FirstName      string
	Username       string
	ProfilePicture string
}

func (s Session) LoggedIn() bool { return s.AccessToken != "" }

// FromLogin maps a login response onto the session record.
func FromLogin(r models.LoginResult) Session {
	return Session{
		UserID:         r.ID,
		AccessToken:    r.Access,
		Role:           r.Role,
		FirstName:      r.FirstName,
		Username:       r.Username,
		ProfilePicture: r.ProfilePicture,
	}
}

func (s Session) fields() map[string]string {
	return map[string]string{
		KeyID:             s.UserID.String(),
		KeyAccessToken:    s.AccessToken,
		KeyRole:           string(s.Role),
		KeyFirstName:      s.FirstName,
		KeyUsername:       s.Username,
		KeyProfilePicture: s.ProfilePicture,
	}
}

// Store is a persisted key-value session store. Writes are last-write-wins.
type Store struct {
	db     *leveldb.DB
	key    []byte
	logger *zap.Logger
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open opens (or creates) the session database at dir. key must be 32 bytes.
func Open(dir string, key []byte, opts ...Option) (*Store, error) {
	if len(key) != keySize {
		return nil, ErrInvalidKeyLength
	}
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open session store %s: %w", dir, err)
	}
	return newStore(db, key, opts), nil
}

// OpenMemory returns a store that lives only as long as the process.
func OpenMemory(key []byte, opts ...Option) (*Store, error) {
	if len(key) != keySize {
		return nil, ErrInvalidKeyLength
	}
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return newStore(db, key, opts), nil
}

func newStore(db *leveldb.DB, key []byte, opts []Option) *Store {
	s := &Store{db: db, key: key, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under name, or ErrNotFound. A sealed value
// that no longer decrypts is reported as not found.
func (s *Store) Get(name string) (string, error) {
	raw, err := s.db.Get([]byte(name), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session get %s: %w", name, err)
	}
	if !sealed[name] {
		return string(raw), nil
	}
	plain, err := open(s.key, name, raw)
	if err != nil {
		s.logger.Warn("discarding unreadable session value", zap.String("key", name), zap.Error(err))
		return "", ErrNotFound
	}
	return string(plain), nil
}

// Set stores value under name. An empty value deletes the key.
func (s *Store) Set(name, value string) error {
	b := new(leveldb.Batch)
	if err := s.put(b, name, value); err != nil {
		return err
	}
	return s.write(b)
}

func (s *Store) Delete(name string) error {
	if err := s.db.Delete([]byte(name), nil); err != nil {
		return fmt.Errorf("session delete %s: %w", name, err)
	}
	return nil
}

// Token returns the stored access token, or "" when nobody is signed in.
func (s *Store) Token() (string, error) {
	tok, err := s.Get(KeyAccessToken)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return tok, err
}

// Load reads every session field. Missing fields are left empty.
func (s *Store) Load() (Session, error) {
	vals := make(map[string]string, len(keys))
	for _, k := range keys {
		v, err := s.Get(k)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return Session{}, err
		}
		vals[k] = v
	}
	return Session{
		UserID:         models.ID(vals[KeyID]),
		AccessToken:    vals[KeyAccessToken],
		Role:           models.Role(vals[KeyRole]),
		FirstName:      vals[KeyFirstName],
		Username:       vals[KeyUsername],
		ProfilePicture: vals[KeyProfilePicture],
	}, nil
}

// Save writes every field of sess in a single batch.
func (s *Store) Save(sess Session) error {
	b := new(leveldb.Batch)
	for k, v := range sess.fields() {
		if err := s.put(b, k, v); err != nil {
			return err
		}
	}
	return s.write(b)
}

// Clear removes everything in the store.
func (s *Store) Clear() error {
	b := new(leveldb.Batch)
	iter := s.db.NewIterator(nil, nil)
	for iter.Next() {
		b.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return s.write(b)
}

func (s *Store) put(b *leveldb.Batch, name, value string) error {
	if value == "" {
		b.Delete([]byte(name))
		return nil
	}
	raw := []byte(value)
	if sealed[name] {
		var err error
		if raw, err = seal(s.key, name, raw); err != nil {
			return fmt.Errorf("seal %s: %w", name, err)
		}
	}
	b.Put([]byte(name), raw)
	return nil
}

func (s *Store) write(b *leveldb.Batch) error {
	if err := s.db.Write(b, nil); err != nil {
		return fmt.Errorf("session write: %w", err)
	}
	return nil
}
