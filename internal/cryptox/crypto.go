// Package cryptox implements the field cipher applied to PII columns and the
// key derivation that feeds it.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrCipher reports a value that looks encrypted but cannot be opened, or a
// failure of the underlying primitive.
var ErrCipher = errors.New("cipher failure")

// encPrefix marks values produced by FieldCipher.Encrypt.
const encPrefix = "enc:v1:"

const keySize = 32

// MakeVerifier returns a digest of the key that can be stored in configuration
// to detect a mistyped secret without revealing the key.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// DeriveMasterKey stretches a secret into a 32-byte AES-256 key with argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// FieldCipher encrypts individual string fields with AES-GCM.
//
// A fresh random nonce is drawn for every call, so encrypting the same
// plaintext twice yields different ciphertexts. Callers comparing encrypted
// fields must decrypt first.
//
// Stored form: "enc:v1:" + base64url(nonce || sealed).
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher builds a cipher from a raw 16, 24 or 32 byte AES key.
func NewFieldCipher(key []byte) (*FieldCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}
	return &FieldCipher{aead: aead}, nil
}

// NewFieldCipherFromSecret derives the key from secret and salt and returns
// the cipher together with the key verifier.
func NewFieldCipherFromSecret(secret, salt string) (*FieldCipher, []byte, error) {
	key := DeriveMasterKey([]byte(secret), []byte(salt))
	defer Wipe(key)
	c, err := NewFieldCipher(key)
	if err != nil {
		return nil, nil, err
	}
	return c, MakeVerifier(key), nil
}

// IsEncrypted reports whether s carries the FieldCipher marker.
func IsEncrypted(s string) bool {
	return strings.HasPrefix(s, encPrefix)
}

// Encrypt seals plaintext. The empty string stays empty.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCipher, err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return encPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
//
// Empty and unmarked values are returned unchanged so legacy plaintext
// columns read cleanly. A marked value that fails to decode or authenticate
// returns ErrCipher.
func (c *FieldCipher) Decrypt(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(value, encPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrCipher, err)
	}

	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrCipher)
	}

	plaintext, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: open: %v", ErrCipher, err)
	}
	return string(plaintext), nil
}

// DecryptOrRaw is the listing-path variant of Decrypt: on failure it hands
// back the stored value instead of an error.
func (c *FieldCipher) DecryptOrRaw(value string) string {
	plaintext, err := c.Decrypt(value)
	if err != nil {
		return value
	}
	return plaintext
}

// RandomHex returns size random bytes, hex encoded.
func RandomHex(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Wipe zeroes b.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
