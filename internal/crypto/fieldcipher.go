// Package crypto provides the field-level encryption used for sensitive
// registration data (national ID, travel document numbers) at rest.
//
// The cipher is constructed once in main from config and injected into the
// repo that needs it; nothing in this package reads ambient settings.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// FieldCipher encrypts and decrypts short string fields with
// XChaCha20-Poly1305. Ciphertexts are base64 strings of nonce||sealed so they
// can live in ordinary text columns.
type FieldCipher struct {
	key []byte
}

// NewFieldCipher validates the key length and returns a cipher.
func NewFieldCipher(key []byte) (*FieldCipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("crypto.NewFieldCipher: key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &FieldCipher{key: key}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("crypto.FieldCipher.Encrypt: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypto.FieldCipher.Encrypt: nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Tampered or truncated ciphertexts fail
// authentication and return an error rather than garbage.
func (c *FieldCipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("crypto.FieldCipher.Decrypt: %w", err)
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("crypto.FieldCipher.Decrypt: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return "", errors.New("crypto.FieldCipher.Decrypt: ciphertext too short")
	}

	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("crypto.FieldCipher.Decrypt: %w", err)
	}
	return string(plaintext), nil
}
