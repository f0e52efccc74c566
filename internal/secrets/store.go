// Package secrets provides pluggable storage for small secret strings
// (SMTP passwords, API tokens) keyed by name.
//
// Every backend implements the same Store interface; callers pick one
// through Select and never depend on a concrete backend type. Native
// backends delegate to the OS secret manager (macOS Keychain, Windows
// Credential Manager); the encrypted-file backend is the portable
// fallback and owns its own crypto (see filestore.go); the environment
// backend is ephemeral, for headless automation.
package secrets

import (
	"errors"
	"log/slog"
	"strings"
)

// ErrNotFound is returned by Get when a secret does not exist. Backends
// wrap it so callers check with errors.Is; it is never used for I/O or
// cryptographic failures.
var ErrNotFound = errors.New("secret not found")

// ErrUnsupportedPlatform is returned by Select when an explicit policy
// names a backend that cannot run on the current OS.
var ErrUnsupportedPlatform = errors.New("storage method not supported on this platform")

// Store is the capability contract shared by all secret backends.
//
// Write operations (Set, Delete) report failure as a boolean and log a
// warning rather than returning an error: a broken secret store must
// never take the rest of the application down with it. Get distinguishes
// "absent" (ErrNotFound wrap) from genuine I/O failure.
type Store interface {
	// Set stores a secret under key, overwriting any previous value.
	// The label is a display hint for OS secret managers; it may be
	// empty. Returns false if key or secret is empty or the write fails.
	Set(key, secret, label string) bool

	// Get retrieves the secret for key, or an ErrNotFound wrap.
	Get(key string) (string, error)

	// Delete removes the secret for key. Deleting an absent key is
	// success.
	Delete(key string) bool

	// Exists reports whether a secret is stored under key.
	Exists(key string) bool

	// List returns the stored keys, never the secrets.
	List() ([]string, error)

	// MethodID is a stable machine-readable backend identifier, equal to
	// the selector policy string that names this backend.
	MethodID() string

	// MethodDescription is a human-readable backend description.
	MethodDescription() string
}

// validRecord rejects empty or all-whitespace keys and secrets before any
// backend work happens. The warning carries the backend id so misbehaving
// callers are easy to trace.
func validRecord(methodID, key, secret string) bool {
	if strings.TrimSpace(key) == "" {
		slog.Warn("refusing to store secret with empty key", "backend", methodID)
		return false
	}
	if strings.TrimSpace(secret) == "" {
		slog.Warn("refusing to store empty secret", "backend", methodID, "key", key)
		return false
	}
	return true
}
