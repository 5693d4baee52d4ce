package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/zalando/go-keyring"
)

const (
	keychainService = "cliptray"
	keychainUser    = "config-key"
)

// ResolveKey returns the sealing key from CLIPTRAY_ENCRYPTION_KEY, falling
// back to the OS keychain. It returns "" when neither holds one.
func ResolveKey() string {
	if k := os.Getenv(KeyEnv); k != "" {
		return k
	}
	k, err := keyring.Get(keychainService, keychainUser)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			slog.Debug("keychain lookup failed", "error", err)
		}
		return ""
	}
	return k
}

// CreateKeychainKey stores a fresh random key in the OS keychain unless one
// is already there, and returns the key in effect.
func CreateKeychainKey() (string, error) {
	if k, err := keyring.Get(keychainService, keychainUser); err == nil && k != "" {
		return k, nil
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	k := hex.EncodeToString(raw)
	if err := keyring.Set(keychainService, keychainUser, k); err != nil {
		return "", fmt.Errorf("store key in keychain: %w", err)
	}
	return k, nil
}
