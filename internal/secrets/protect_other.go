//go:build !windows

package secrets

import "errors"

// errNoPlatformProtection routes the file backend onto the portable
// envelope path on platforms without a per-user data-protection API.
var errNoPlatformProtection = errors.New("no platform data protection")

func platformProtect(_ []byte) ([]byte, error) {
	return nil, errNoPlatformProtection
}

func platformUnprotect(_ []byte) ([]byte, error) {
	return nil, errNoPlatformProtection
}

const hasPlatformProtection = false
