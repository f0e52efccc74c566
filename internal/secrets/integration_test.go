//go:build integration && darwin

package secrets

import (
	"errors"
	"testing"
)

// Integration tests use the real macOS Keychain.
// Run with: go test -tags integration ./internal/secrets/
//
// Requires an unlocked login Keychain and an interactive session
// (first run may prompt for Keychain access approval).

func integrationStore() *KeychainStore {
	return &KeychainStore{service: "com.stockalert.test"}
}

func cleanupIntegration(t *testing.T, s *KeychainStore, keys ...string) {
	t.Helper()
	for _, k := range keys {
		s.Delete(k)
	}
}

func TestKeychainSetAndGet(t *testing.T) {
	s := integrationStore()
	key := "integration-set-get"
	defer cleanupIntegration(t, s, key)

	if !s.Set(key, "hello-keychain", "") {
		t.Fatal("Set returned false")
	}

	val, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "hello-keychain" {
		t.Errorf("expected 'hello-keychain', got %q", val)
	}
}

func TestKeychainOverwrite(t *testing.T) {
	s := integrationStore()
	key := "integration-overwrite"
	defer cleanupIntegration(t, s, key)

	s.Set(key, "first", "")
	s.Set(key, "second", "")

	val, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "second" {
		t.Errorf("expected 'second', got %q", val)
	}
}

func TestKeychainDeleteIdempotent(t *testing.T) {
	s := integrationStore()
	key := "integration-delete"

	s.Set(key, "to-delete", "")
	if !s.Delete(key) {
		t.Fatal("Delete returned false")
	}
	if !s.Delete(key) {
		t.Error("second Delete returned false")
	}
	if _, err := s.Get(key); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
