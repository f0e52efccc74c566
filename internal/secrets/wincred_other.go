//go:build !windows

package secrets

import "fmt"

// The selector rejects the windows-credential-manager policy off windows
// before construction; this stub only keeps Select compiling everywhere.
func newCredManagerStore() (Store, error) {
	return nil, fmt.Errorf("windows-credential-manager: %w", ErrUnsupportedPlatform)
}
