//go:build darwin

package secrets

import (
	"errors"
	"fmt"
	"log/slog"

	gokeychain "github.com/keybase/go-keychain"
)

// KeychainService is the Keychain service attribute for all stockalert
// secrets. The caller key becomes the account attribute.
const KeychainService = "com.stockalert"

// KeychainStore stores secrets as generic passwords in the macOS
// Keychain. Items are never synced to iCloud and are only readable while
// the device is unlocked.
type KeychainStore struct {
	service string
}

func newKeychainStore() (Store, error) {
	return &KeychainStore{service: KeychainService}, nil
}

func (s *KeychainStore) MethodID() string { return PolicyMacOSKeychain }

func (s *KeychainStore) MethodDescription() string {
	return "macOS Keychain"
}

// Set stores a secret in the Keychain, overwriting any existing item
// (update = delete + add).
func (s *KeychainStore) Set(key, secret, label string) bool {
	if !validRecord(s.MethodID(), key, secret) {
		return false
	}
	s.Delete(key)

	if label == "" {
		label = fmt.Sprintf("stockalert: %s", key)
	}
	item := gokeychain.NewGenericPassword(s.service, key, label, []byte(secret), "")
	item.SetSynchronizable(gokeychain.SynchronizableNo)
	item.SetAccessible(gokeychain.AccessibleWhenUnlockedThisDeviceOnly)

	if err := gokeychain.AddItem(item); err != nil {
		slog.Warn("keychain add failed", "key", key, "error", err)
		return false
	}
	return true
}

func (s *KeychainStore) Get(key string) (string, error) {
	data, err := gokeychain.GetGenericPassword(s.service, key, "", "")
	if err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("keychain get %q: %w", key, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return string(data), nil
}

func (s *KeychainStore) Delete(key string) bool {
	err := gokeychain.DeleteGenericPasswordItem(s.service, key)
	if err != nil && !errors.Is(err, gokeychain.ErrorItemNotFound) {
		slog.Warn("keychain delete failed", "key", key, "error", err)
		return false
	}
	return true
}

func (s *KeychainStore) Exists(key string) bool {
	_, err := s.Get(key)
	return err == nil
}

func (s *KeychainStore) List() ([]string, error) {
	accounts, err := gokeychain.GetGenericPasswordAccounts(s.service)
	if err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("keychain list: %w", err)
	}
	return accounts, nil
}
