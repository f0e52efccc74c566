package secrets

import (
	"errors"
	"os"
	"testing"
)

func TestEnvName(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"smtp", "STOCKALERT_SECRET_SMTP"},
		{"twilio-token", "STOCKALERT_SECRET_TWILIO_TOKEN"},
		{"oauth:refresh", "STOCKALERT_SECRET_OAUTH_REFRESH"},
		{"api key", "STOCKALERT_SECRET_API_KEY"},
	}
	for _, tc := range cases {
		if got := envName(tc.key); got != tc.want {
			t.Errorf("envName(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestEnvStoreRoundTrip(t *testing.T) {
	s := NewEnvStore()
	t.Cleanup(func() { os.Unsetenv("STOCKALERT_SECRET_ENV_RT") })

	if !s.Set("env-rt", "value", "") {
		t.Fatal("Set returned false")
	}
	val, err := s.Get("env-rt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "value" {
		t.Errorf("expected 'value', got %q", val)
	}
	if os.Getenv("STOCKALERT_SECRET_ENV_RT") != "value" {
		t.Error("secret not visible in process environment")
	}
}

func TestEnvStoreNotFound(t *testing.T) {
	s := NewEnvStore()
	if _, err := s.Get("env-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if s.Exists("env-missing") {
		t.Error("Exists true for absent key")
	}
}

func TestEnvStoreDeleteIdempotent(t *testing.T) {
	s := NewEnvStore()

	s.Set("env-del", "value", "")
	if !s.Delete("env-del") {
		t.Fatal("Delete returned false")
	}
	if !s.Delete("env-del") {
		t.Error("second Delete returned false")
	}
	if s.Exists("env-del") {
		t.Error("key still exists after delete")
	}
}

func TestEnvStoreList(t *testing.T) {
	s := NewEnvStore()
	t.Cleanup(func() {
		os.Unsetenv("STOCKALERT_SECRET_ENV_LIST_A")
		os.Unsetenv("STOCKALERT_SECRET_ENV_LIST_B")
	})

	s.Set("env-list-a", "1", "")
	s.Set("env-list-b", "2", "")

	keys, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	found := make(map[string]bool, len(keys))
	for _, k := range keys {
		found[k] = true
	}
	// List reports normalized names.
	if !found["ENV_LIST_A"] || !found["ENV_LIST_B"] {
		t.Errorf("expected normalized keys in %v", keys)
	}
}
