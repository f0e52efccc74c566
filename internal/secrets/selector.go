package secrets

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Selector policies. "auto" resolves to the platform-native backend; any
// other value names a backend explicitly and is honored only where that
// backend can actually run.
const (
	PolicyAuto              = "auto"
	PolicyWindowsCredential = "windows-credential-manager"
	PolicyMacOSKeychain     = "macos-keychain"
	PolicyLinuxSecret       = "linux-secret-service"
	PolicyEncryptedFile     = "encrypted-file"
	PolicyEnvironment       = "environment-variables"
)

// Policies lists every accepted policy string, for config validation and
// help text.
func Policies() []string {
	return []string{
		PolicyAuto,
		PolicyWindowsCredential,
		PolicyMacOSKeychain,
		PolicyLinuxSecret,
		PolicyEncryptedFile,
		PolicyEnvironment,
	}
}

// ValidPolicy reports whether policy is a recognized policy string. It
// does not check platform compatibility; Select does.
func ValidPolicy(policy string) bool {
	for _, p := range Policies() {
		if p == policy {
			return true
		}
	}
	return false
}

// CredentialsFileName is the on-disk name of the encrypted credential map.
const CredentialsFileName = "credentials.enc"

// Select resolves a policy to a concrete backend. dataDir is the
// directory holding the encrypted credential file for file-backed
// methods. Selection is a pure function of (policy, platform): an
// explicit policy that cannot run on this OS is a hard
// ErrUnsupportedPlatform error, never a silent substitution.
func Select(policy, dataDir string) (Store, error) {
	method, err := resolveMethod(policy, runtime.GOOS)
	if err != nil {
		return nil, err
	}

	switch method {
	case PolicyWindowsCredential:
		return newCredManagerStore()
	case PolicyMacOSKeychain:
		return newKeychainStore()
	case PolicyLinuxSecret:
		return NewSecretServiceStore(filepath.Join(dataDir, CredentialsFileName)), nil
	case PolicyEncryptedFile:
		return NewFileStore(filepath.Join(dataDir, CredentialsFileName)), nil
	case PolicyEnvironment:
		return NewEnvStore(), nil
	}
	return nil, fmt.Errorf("unknown storage method %q", method)
}

// resolveMethod maps (policy, GOOS) to a concrete method id. Split from
// Select so platform resolution is testable on any host.
func resolveMethod(policy, goos string) (string, error) {
	switch policy {
	case PolicyAuto:
		switch goos {
		case "windows":
			return PolicyWindowsCredential, nil
		case "darwin":
			return PolicyMacOSKeychain, nil
		default:
			return PolicyLinuxSecret, nil
		}
	case PolicyWindowsCredential:
		if goos != "windows" {
			return "", fmt.Errorf("%s requires windows, running on %s: %w", policy, goos, ErrUnsupportedPlatform)
		}
		return policy, nil
	case PolicyMacOSKeychain:
		if goos != "darwin" {
			return "", fmt.Errorf("%s requires darwin, running on %s: %w", policy, goos, ErrUnsupportedPlatform)
		}
		return policy, nil
	case PolicyLinuxSecret:
		if goos == "windows" || goos == "darwin" {
			return "", fmt.Errorf("%s requires linux, running on %s: %w", policy, goos, ErrUnsupportedPlatform)
		}
		return policy, nil
	case PolicyEncryptedFile, PolicyEnvironment:
		return policy, nil
	}
	return "", fmt.Errorf("unknown storage method %q", policy)
}
