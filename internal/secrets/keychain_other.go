//go:build !darwin

package secrets

import "fmt"

// The selector rejects the macos-keychain policy off darwin before
// construction; this stub only keeps Select compiling everywhere.
func newKeychainStore() (Store, error) {
	return nil, fmt.Errorf("macos-keychain: %w", ErrUnsupportedPlatform)
}
