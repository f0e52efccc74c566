package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// EnvPrefix namespaces secrets stored as process environment variables.
const EnvPrefix = "STOCKALERT_SECRET_"

// EnvStore keeps secrets in the process environment. Nothing is written
// to disk and nothing survives the process, which is exactly what
// headless CI runs want. Keys are normalized (uppercased, separators
// folded to underscores), so List returns normalized names, not the
// originals.
type EnvStore struct{}

// NewEnvStore creates the environment-variable backend.
func NewEnvStore() *EnvStore { return &EnvStore{} }

func (s *EnvStore) MethodID() string { return PolicyEnvironment }

func (s *EnvStore) MethodDescription() string {
	return "Process environment variables (non-persistent)"
}

func (s *EnvStore) Set(key, secret, _ string) bool {
	if !validRecord(s.MethodID(), key, secret) {
		return false
	}
	if err := os.Setenv(envName(key), secret); err != nil {
		slog.Warn("setting secret environment variable failed", "key", key, "error", err)
		return false
	}
	return true
}

func (s *EnvStore) Get(key string) (string, error) {
	secret, ok := os.LookupEnv(envName(key))
	if !ok || secret == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return secret, nil
}

func (s *EnvStore) Delete(key string) bool {
	if err := os.Unsetenv(envName(key)); err != nil {
		slog.Warn("unsetting secret environment variable failed", "key", key, "error", err)
		return false
	}
	return true
}

func (s *EnvStore) Exists(key string) bool {
	secret, ok := os.LookupEnv(envName(key))
	return ok && secret != ""
}

func (s *EnvStore) List() ([]string, error) {
	var keys []string
	for _, entry := range os.Environ() {
		name, _, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		keys = append(keys, strings.TrimPrefix(name, EnvPrefix))
	}
	sort.Strings(keys)
	return keys, nil
}

// envName maps a caller key to its environment variable name:
// EnvPrefix plus the key uppercased with '-', ':' and spaces folded to
// underscores.
func envName(key string) string {
	normalized := strings.ToUpper(key)
	for _, r := range []string{"-", ":", " "} {
		normalized = strings.ReplaceAll(normalized, r, "_")
	}
	return EnvPrefix + normalized
}
