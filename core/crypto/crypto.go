package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Encrypter protects token material at rest. Strings in, strings out so
// repositories can store ciphertext in plain text columns.
type Encrypter interface {
	EncryptString(plaintext string) (string, error)
	DecryptString(ciphertext string) (string, error)
}

// XChaCha20Encrypter seals values with XChaCha20-Poly1305 and a random
// nonce prefix, then base64-encodes the result.
type XChaCha20Encrypter struct {
	key []byte
}

// NewFromBase64Key builds an encrypter from a base64-encoded 32-byte key.
func NewFromBase64Key(encodedKey string) (*XChaCha20Encrypter, error) {
	if encodedKey == "" {
		return nil, errors.New("encryption key is empty")
	}
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, err
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.New("encryption key must be 32 bytes")
	}
	return &XChaCha20Encrypter{key: key}, nil
}

func (e *XChaCha20Encrypter) EncryptString(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(e.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (e *XChaCha20Encrypter) DecryptString(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(e.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Noop passes values through unchanged. Used when no TOKEN_ENCRYPTION_KEY
// is configured.
type Noop struct{}

func (Noop) EncryptString(plaintext string) (string, error)  { return plaintext, nil }
func (Noop) DecryptString(ciphertext string) (string, error) { return ciphertext, nil }
