// Package crypto provides the symmetric codec used for two-factor material at
// rest and for the pending-2FA cookie. Encryption and decryption are explicit
// at every read/write boundary; nothing is decrypted implicitly.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	ErrInvalidKeySize   = errors.New("encryption key must be 16, 24 or 32 bytes")
	ErrInvalidCipherLen = errors.New("ciphertext too short")
	ErrDecryptFailed    = errors.New("decryption failed")
)

// Codec performs authenticated AES-GCM encryption with a fixed key.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec builds a codec from a raw key. A key of the wrong size is a
// configuration error and is reported immediately.
func NewCodec(key []byte) (*Codec, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Codec{aead: aead}, nil
}

// EncryptString encrypts plaintext and returns a base64 string safe for
// database columns and cookie values. The nonce is prepended to the
// ciphertext before encoding.
func (c *Codec) EncryptString(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString. Tampered or truncated input fails
// with ErrDecryptFailed; callers must treat that as an invalid credential,
// not an internal error.
func (c *Codec) DecryptString(encoded string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecryptFailed
	}

	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize {
		return "", ErrInvalidCipherLen
	}

	plaintext, err := c.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}
