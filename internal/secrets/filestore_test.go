package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func fileStoreAt(t *testing.T, dir, identity string) *FileStore {
	t.Helper()
	s := NewFileStore(filepath.Join(dir, CredentialsFileName))
	s.identity = func(context.Context) string { return identity }
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := fileStoreAt(t, dir, "machine-1")

	if !s.Set("smtp", "user:hunter2", "") {
		t.Fatal("Set returned false")
	}

	val, err := s.Get("smtp")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "user:hunter2" {
		t.Errorf("expected 'user:hunter2', got %q", val)
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	fileStoreAt(t, dir, "machine-1").Set("token", "abc123", "")

	// Fresh instance over the same file, same machine.
	val, err := fileStoreAt(t, dir, "machine-1").Get("token")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if val != "abc123" {
		t.Errorf("expected 'abc123', got %q", val)
	}
}

func TestFileStoreListAfterMultipleStores(t *testing.T) {
	s := fileStoreAt(t, t.TempDir(), "machine-1")

	s.Set("a", "1", "")
	s.Set("b", "2", "")
	s.Set("a", "3", "")

	keys, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("expected [a b], got %v", keys)
	}

	val, _ := s.Get("a")
	if val != "3" {
		t.Errorf("expected '3', got %q", val)
	}
}

func TestFileStoreDeleteIdempotent(t *testing.T) {
	s := fileStoreAt(t, t.TempDir(), "machine-1")

	s.Set("doomed", "value", "")
	if !s.Delete("doomed") {
		t.Fatal("Delete returned false")
	}
	if !s.Delete("doomed") {
		t.Error("second Delete returned false")
	}
	if s.Exists("doomed") {
		t.Error("key still exists after delete")
	}
}

func TestFileStoreCorruptionTolerance(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, CredentialsFileName)
	s := fileStoreAt(t, dir, "machine-1")

	if err := os.WriteFile(path, []byte("garbage garbage garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	// Reads treat the corrupt file as empty, not as an error.
	if _, err := s.Get("anything"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on corrupt file, got %v", err)
	}
	keys, err := s.List()
	if err != nil || len(keys) != 0 {
		t.Errorf("expected empty list, got %v, %v", keys, err)
	}

	// The next write replaces the corrupt file with a usable one.
	if !s.Set("fresh", "start", "") {
		t.Fatal("Set over corrupt file returned false")
	}
	val, err := s.Get("fresh")
	if err != nil || val != "start" {
		t.Errorf("expected 'start', got %q, %v", val, err)
	}
}

func TestFileStoreCrossMachineIsolation(t *testing.T) {
	if hasPlatformProtection {
		t.Skip("OS data protection bypasses the machine-bound key")
	}

	dir := t.TempDir()
	fileStoreAt(t, dir, "machine-1").Set("token", "secret-value", "")

	// Same file, different machine identity: undecryptable, acts absent.
	other := fileStoreAt(t, dir, "machine-2")
	if _, err := other.Get("token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound under foreign identity, got %v", err)
	}

	// And the foreign machine can still take over the file.
	if !other.Set("token", "new-value", "") {
		t.Fatal("Set under foreign identity returned false")
	}
	val, err := other.Get("token")
	if err != nil || val != "new-value" {
		t.Errorf("expected 'new-value', got %q, %v", val, err)
	}
}

func TestFileStoreFilePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, CredentialsFileName)

	fileStoreAt(t, dir, "machine-1").Set("key", "value", "")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected 0600, got %o", perm)
	}
}

func TestFileStoreRejectsEmptyInput(t *testing.T) {
	dir := t.TempDir()
	s := fileStoreAt(t, dir, "machine-1")

	if s.Set("", "value", "") {
		t.Error("expected empty key to be rejected")
	}
	if s.Set("key", "", "") {
		t.Error("expected empty secret to be rejected")
	}
	if _, err := os.Stat(filepath.Join(dir, CredentialsFileName)); !errors.Is(err, os.ErrNotExist) {
		t.Error("rejected writes must not create the credentials file")
	}
}

func TestFileStoreConcurrentWriters(t *testing.T) {
	s := fileStoreAt(t, t.TempDir(), "machine-1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if !s.Set(fmt.Sprintf("key-%d", i), "value", "") {
				t.Errorf("Set key-%d returned false", i)
			}
		}(i)
	}
	wg.Wait()

	// Every successful Set must survive the others.
	keys, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 8 {
		t.Fatalf("expected 8 keys, got %v", keys)
	}
	for i := 0; i < 8; i++ {
		if !s.Exists(fmt.Sprintf("key-%d", i)) {
			t.Errorf("key-%d lost", i)
		}
	}
}

func TestFileStoreConcurrentReaders(t *testing.T) {
	s := fileStoreAt(t, t.TempDir(), "machine-1")
	s.Set("shared", "value", "")

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			val, err := s.Get("shared")
			if err == nil && val != "value" {
				err = errors.New("wrong value: " + val)
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent Get: %v", err)
		}
	}
}
