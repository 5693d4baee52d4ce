// Package crypto seals secrets kept in config.json (the S3 secret key) with
// AES-256-GCM under a key supplied through the environment.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

// KeyEnv names the environment variable holding the sealing key.
const KeyEnv = "CLIPTRAY_ENCRYPTION_KEY"

const sealedPrefix = "aes-gcm:"

// ErrBadKey is returned when the sealing key has the wrong size or encoding.
var ErrBadKey = errors.New("encryption key must be 32 bytes (64 hex chars, 44 base64 chars, or 32 raw bytes)")

// Seal returns "aes-gcm:" + base64(nonce|ciphertext). An empty key or value,
// or a value that is already sealed, is returned unchanged.
func Seal(value, key string) (string, error) {
	if key == "" || value == "" || IsSealed(value) {
		return value, nil
	}
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	out := gcm.Seal(nonce, nonce, []byte(value), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Plain values pass through so a config written before
// a key was set keeps working.
func Open(value, key string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	if key == "" {
		return "", errors.New("config holds a sealed secret but " + KeyEnv + " is not set")
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", errors.New("sealed secret is not valid base64")
	}
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	n := gcm.NonceSize()
	if len(data) < n {
		return "", errors.New("sealed secret is truncated")
	}
	plain, err := gcm.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", errors.New("unseal failed: wrong key or corrupted value")
	}
	return string(plain), nil
}

// IsSealed reports whether value carries the sealed prefix.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}

func newGCM(key string) (cipher.AEAD, error) {
	raw, err := deriveKey(key)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// deriveKey accepts hex (64 chars), base64 (44 chars) or 32 raw bytes.
func deriveKey(input string) ([]byte, error) {
	switch {
	case len(input) == 64:
		if b, err := hex.DecodeString(input); err == nil {
			return b, nil
		}
	case len(input) == 44 && strings.HasSuffix(input, "="):
		if b, err := base64.StdEncoding.DecodeString(input); err == nil && len(b) == 32 {
			return b, nil
		}
	case len(input) == 32:
		return []byte(input), nil
	}
	return nil, ErrBadKey
}
