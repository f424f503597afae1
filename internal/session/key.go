package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KeyEnv overrides the key file with a hex-encoded 32-byte master key.
const KeyEnv = "CLINIC_SESSION_KEY_HEX"

// LoadOrCreateKey returns the session master key. The environment variable
// wins; otherwise the key is read from path, and generated there (mode 0600)
// on first use.
func LoadOrCreateKey(path string) ([]byte, error) {
	if h := os.Getenv(KeyEnv); h != "" {
		return decodeKey(h)
	}
	data, err := os.ReadFile(path)
	if err == nil {
		return decodeKey(string(data))
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read session key: %w", err)
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create key directory: %w", err)
	}
	// O_EXCL: never clobber a key another process just wrote.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return LoadOrCreateKey(path)
		}
		return nil, fmt.Errorf("write session key: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(hex.EncodeToString(key) + "\n"); err != nil {
		return nil, fmt.Errorf("write session key: %w", err)
	}
	return key, nil
}

func decodeKey(h string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(h))
	if err != nil {
		return nil, fmt.Errorf("session key hex decode error: %w", err)
	}
	if len(b) != keySize {
		return nil, fmt.Errorf("session key length must be 32 bytes (hex 64 chars)")
	}
	return b, nil
}
