package secrets

import (
	"errors"

	"stockalert/internal/audit"
)

// AuditedStore wraps a Store and records every secret access in the
// audit log. Audit logging is best-effort: a failure to log never blocks
// the underlying operation.
type AuditedStore struct {
	inner Store
	audit *audit.Logger
	actor string // "cli" or "daemon"
}

// NewAuditedStore wraps an existing store with audit logging.
func NewAuditedStore(inner Store, auditLog *audit.Logger, actor string) *AuditedStore {
	return &AuditedStore{inner: inner, audit: auditLog, actor: actor}
}

func (s *AuditedStore) Set(key, secret, label string) bool {
	ok := s.inner.Set(key, secret, label)
	entry := audit.Entry{
		Action:  audit.ActionSecretWrite,
		Key:     key,
		Backend: s.inner.MethodID(),
		Actor:   s.actor,
	}
	if !ok {
		entry.Error = "write failed"
	}
	s.audit.Log(entry)
	return ok
}

func (s *AuditedStore) Get(key string) (string, error) {
	secret, err := s.inner.Get(key)
	entry := audit.Entry{
		Action:  audit.ActionSecretRead,
		Key:     key,
		Backend: s.inner.MethodID(),
		Actor:   s.actor,
	}
	// "not found" is a normal outcome, not an auditable failure.
	if err != nil && !errors.Is(err, ErrNotFound) {
		entry.Error = err.Error()
	}
	s.audit.Log(entry)
	return secret, err
}

func (s *AuditedStore) Delete(key string) bool {
	ok := s.inner.Delete(key)
	entry := audit.Entry{
		Action:  audit.ActionSecretDelete,
		Key:     key,
		Backend: s.inner.MethodID(),
		Actor:   s.actor,
	}
	if !ok {
		entry.Error = "delete failed"
	}
	s.audit.Log(entry)
	return ok
}

func (s *AuditedStore) Exists(key string) bool {
	return s.inner.Exists(key)
}

func (s *AuditedStore) List() ([]string, error) {
	return s.inner.List()
}

func (s *AuditedStore) MethodID() string { return s.inner.MethodID() }

func (s *AuditedStore) MethodDescription() string { return s.inner.MethodDescription() }
