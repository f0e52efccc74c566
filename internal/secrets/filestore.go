package secrets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"stockalert/internal/machineid"
)

// FileStore persists the credential map as a single encrypted file. It is
// the portable fallback backend, and also what the Linux secret-service
// backend currently delegates to.
//
// Every operation loads, mutates and rewrites the whole file. In-process
// writers are serialized by a store-level lock; there is no cross-process
// locking, so separate processes race with last-writer-wins semantics on
// the full map. An unreadable or corrupt file is treated as empty rather
// than surfaced: a damaged credential store must not stop the application
// from starting, and the next Set overwrites it.
type FileStore struct {
	mu   sync.RWMutex
	path string
	// identity is the machine identity source for key derivation,
	// swappable in tests to simulate foreign machines.
	identity func(context.Context) string
}

// NewFileStore creates a file-backed store at path. The file and its
// directory are created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, identity: machineid.ID}
}

func (s *FileStore) MethodID() string { return PolicyEncryptedFile }

func (s *FileStore) MethodDescription() string {
	if hasPlatformProtection {
		return "Encrypted credentials file (user-scoped OS data protection)"
	}
	return "Encrypted credentials file (AES-256, machine-bound key)"
}

// Set stores or overwrites a secret. The label is not persisted; the
// credential map holds key/secret pairs only.
func (s *FileStore) Set(key, secret, _ string) bool {
	if !validRecord(s.MethodID(), key, secret) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := s.load()
	creds[key] = secret
	if err := s.save(creds); err != nil {
		slog.Warn("writing credentials file failed", "path", s.path, "error", err)
		return false
	}
	return true
}

func (s *FileStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secret, ok := s.load()[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return secret, nil
}

func (s *FileStore) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := s.load()
	if _, ok := creds[key]; !ok {
		return true
	}
	delete(creds, key)
	if err := s.save(creds); err != nil {
		slog.Warn("writing credentials file failed", "path", s.path, "error", err)
		return false
	}
	return true
}

func (s *FileStore) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.load()[key]
	return ok
}

func (s *FileStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds := s.load()
	keys := make([]string, 0, len(creds))
	for k := range creds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// load reads and decrypts the credential map. Callers must hold mu. All
// read-path failures degrade to an empty map with a logged warning.
func (s *FileStore) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("reading credentials file failed, treating as empty", "path", s.path, "error", err)
		}
		return map[string]string{}
	}

	plaintext, err := s.decrypt(data)
	if err != nil {
		slog.Warn("credentials file undecryptable, treating as empty", "path", s.path, "error", err)
		return map[string]string{}
	}

	creds := map[string]string{}
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		slog.Warn("credentials file payload unparsable, treating as empty", "path", s.path, "error", err)
		return map[string]string{}
	}
	return creds
}

// decrypt tries the platform data-protection path first, then the
// portable envelope path. Output that does not look like the JSON
// credential map also falls through: it means the bytes were produced by
// the other scheme.
func (s *FileStore) decrypt(data []byte) ([]byte, error) {
	if plaintext, err := platformUnprotect(data); err == nil && looksLikeJSON(plaintext) {
		return plaintext, nil
	}
	return decryptFallback(keyMaterial(s.identity), data)
}

func (s *FileStore) save(creds map[string]string) error {
	plaintext, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	var encrypted []byte
	if hasPlatformProtection {
		encrypted, err = platformProtect(plaintext)
	} else {
		encrypted, err = encryptFallback(keyMaterial(s.identity), plaintext)
	}
	if err != nil {
		return fmt.Errorf("encrypting credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	// Write-to-temp-then-rename so a crash mid-write leaves the previous
	// file intact instead of a truncated one.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing credentials: %w", err)
	}
	if _, err := tmp.Write(encrypted); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing credentials file: %w", err)
	}
	return nil
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
