// Package secretbox seals credential values with AES-256-GCM before they are
// written to a credential backend.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/panelctl/internal/domain/port/driven"
)

// KeySize is the required key length for AES-256.
const KeySize = 32

// Box encrypts and decrypts values with a fixed key. A Box with a nil key
// rejects every operation with driven.ErrEncryptionKeyNotSet.
type Box struct {
	key []byte
}

// New returns a Box for key. key must be KeySize bytes, or nil.
func New(key []byte) (*Box, error) {
	if key != nil && len(key) != KeySize {
		return nil, fmt.Errorf("secretbox: key must be %d bytes, got %d", KeySize, len(key))
	}
	return &Box{key: key}, nil
}

// Enabled reports whether the box holds a key.
func (b *Box) Enabled() bool {
	return b.key != nil
}

// Seal encrypts plaintext and returns base64(nonce || ciphertext || tag).
func (b *Box) Seal(plaintext string) (string, error) {
	gcm, err := b.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (b *Box) Open(encoded string) (string, error) {
	gcm, err := b.aead()
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}
	return string(plaintext), nil
}

func (b *Box) aead() (cipher.AEAD, error) {
	if b.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
