package secrets

// SecretServiceStore is the Linux backend. True Secret Service (D-Bus)
// integration is not implemented yet; the backend delegates to the
// encrypted-file store while reporting its own method id, so the selector
// surface stays stable when the native integration lands.
//
// TODO: speak the org.freedesktop.secrets protocol instead of delegating.
type SecretServiceStore struct {
	*FileStore
}

// NewSecretServiceStore creates the Linux secret-service backend over the
// encrypted credential file at path.
func NewSecretServiceStore(path string) *SecretServiceStore {
	return &SecretServiceStore{FileStore: NewFileStore(path)}
}

func (s *SecretServiceStore) MethodID() string { return PolicyLinuxSecret }

func (s *SecretServiceStore) MethodDescription() string {
	return "Linux secret service (currently file-backed)"
}
