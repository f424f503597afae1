package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ===== Key derivation / AES-GCM sealing =====

const keySize = 32

var ErrInvalidKeyLength = errors.New("session: key must be 32 bytes")

// DeriveKey binds the master key to a device fingerprint with HKDF-SHA256, so
// a copied session directory is useless on another machine.
func DeriveKey(master []byte, fingerprint string) ([]byte, error) {
	if len(master) != keySize {
		return nil, ErrInvalidKeyLength
	}
	h := hkdf.New(sha256.New, master, []byte(fingerprint), []byte("campusclinic-session"))
	out := make([]byte, keySize)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, err
	}
	return out, nil
}

// seal encrypts plaintext with AES-GCM and prepends the nonce. The field name
// is authenticated as associated data so sealed values cannot be swapped
// between keys.
func seal(key []byte, field string, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, []byte(field)), nil
}

func open(key []byte, field string, blob []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	ns := gcm.NonceSize()
	if len(blob) < ns {
		return nil, errors.New("ciphertext too short")
	}
	return gcm.Open(nil, blob[:ns], blob[ns:], []byte(field))
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != keySize {
		return nil, ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
