package secrets

import (
	"errors"
	"testing"
)

// Contract tests run against MemoryStore — every backend shares these
// semantics, and the file backend repeats them against real files in
// filestore_test.go.

func testStore() Store {
	return NewMemoryStore()
}

func TestSetAndGet(t *testing.T) {
	s := testStore()

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

func TestGetNotFound(t *testing.T) {
	s := testStore()

	_, err := s.Get("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := testStore()

	s.Set("token", "first", "")
	s.Set("token", "second", "")

	val, err := s.Get("token")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "second" {
		t.Errorf("expected 'second', got %q", val)
	}
}

func TestSetRejectsEmptyKey(t *testing.T) {
	s := testStore()

	if s.Set("", "value", "") {
		t.Error("expected Set with empty key to fail")
	}
	if s.Set("   ", "value", "") {
		t.Error("expected Set with whitespace key to fail")
	}
}

func TestSetRejectsEmptySecret(t *testing.T) {
	s := testStore()

	if s.Set("key", "", "") {
		t.Error("expected Set with empty secret to fail")
	}
	if s.Set("key", " \t", "") {
		t.Error("expected Set with whitespace secret to fail")
	}
	if s.Exists("key") {
		t.Error("rejected Set must not create a record")
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := testStore()

	s.Set("doomed", "value", "")

	if !s.Delete("doomed") {
		t.Fatal("Delete returned false")
	}
	if !s.Delete("doomed") {
		t.Error("second Delete returned false")
	}
	if !s.Delete("never-existed") {
		t.Error("Delete of absent key returned false")
	}
}

func TestKeyIsolation(t *testing.T) {
	s := testStore()

	s.Set("a", "value-a", "")
	s.Set("b", "value-b", "")
	s.Delete("a")

	val, err := s.Get("b")
	if err != nil {
		t.Fatalf("Get b: %v", err)
	}
	if val != "value-b" {
		t.Errorf("deleting a affected b: got %q", val)
	}
}

func TestExists(t *testing.T) {
	s := testStore()

	if s.Exists("token") {
		t.Error("Exists true before Set")
	}
	s.Set("token", "value", "")
	if !s.Exists("token") {
		t.Error("Exists false after Set")
	}
}

func TestListReturnsKeysOnce(t *testing.T) {
	s := testStore()

	s.Set("a", "1", "")
	s.Set("b", "2", "")
	s.Set("a", "3", "")

	keys, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
	if keys[0] != "a" || keys[1] != "b" {
		t.Errorf("expected [a b], got %v", keys)
	}

	val, _ := s.Get("a")
	if val != "3" {
		t.Errorf("expected last write to win, got %q", val)
	}
}
