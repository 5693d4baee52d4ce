package crypto

import (
	"errors"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestSealOpen(t *testing.T) {
	sealed, err := Seal("s3cret", testKey)
	if err != nil {
		t.Fatal(err)
	}
	if !IsSealed(sealed) || strings.Contains(sealed, "s3cret") {
		t.Fatalf("sealed = %q", sealed)
	}
	again, _ := Seal(sealed, testKey)
	if again != sealed {
		t.Error("sealing twice changed the value")
	}
	plain, err := Open(sealed, testKey)
	if err != nil || plain != "s3cret" {
		t.Fatalf("Open = %q, %v", plain, err)
	}
}

func TestSealPassThrough(t *testing.T) {
	for _, tc := range []struct{ value, key string }{{"", testKey}, {"plain", ""}} {
		got, err := Seal(tc.value, tc.key)
		if err != nil || got != tc.value {
			t.Errorf("Seal(%q, %q) = %q, %v", tc.value, tc.key, got, err)
		}
	}
	if got, err := Open("plain", testKey); err != nil || got != "plain" {
		t.Errorf("Open(plain) = %q, %v", got, err)
	}
}

func TestOpenErrors(t *testing.T) {
	sealed, _ := Seal("s3cret", testKey)
	if _, err := Open(sealed, ""); err == nil {
		t.Error("expected error without key")
	}
	if _, err := Open(sealed, strings.Repeat("z", 32)); err == nil {
		t.Error("expected error with wrong key")
	}
	if _, err := Open("aes-gcm:!!", testKey); err == nil {
		t.Error("expected error for bad base64")
	}
	if _, err := Seal("x", "short"); !errors.Is(err, ErrBadKey) {
		t.Errorf("Seal with short key: %v", err)
	}
}

func TestDeriveKeyEncodings(t *testing.T) {
	hexKey := strings.Repeat("ab", 32)
	b64Key := strings.Repeat("A", 43) + "="
	for _, k := range []string{hexKey, b64Key, testKey} {
		raw, err := deriveKey(k)
		if err != nil || len(raw) != 32 {
			t.Errorf("deriveKey(%q) = %d bytes, %v", k, len(raw), err)
		}
	}
}

func TestKeychainKey(t *testing.T) {
	keyring.MockInit()
	t.Setenv(KeyEnv, "")

	if got := ResolveKey(); got != "" {
		t.Fatalf("ResolveKey with empty keychain = %q", got)
	}
	k, err := CreateKeychainKey()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := deriveKey(k); err != nil {
		t.Fatalf("generated key unusable: %v", err)
	}
	if again, _ := CreateKeychainKey(); again != k {
		t.Error("second call replaced the stored key")
	}
	if got := ResolveKey(); got != k {
		t.Errorf("ResolveKey = %q, want keychain key", got)
	}

	t.Setenv(KeyEnv, testKey)
	if got := ResolveKey(); got != testKey {
		t.Errorf("env key should win, got %q", got)
	}
}
