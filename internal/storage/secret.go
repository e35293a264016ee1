package storage

// SecretStore 保存敏感值（API Key）。调用方只依赖这个接口，
// 以后可以换成后端代理实现而不改调用点。
// SecretStore holds sensitive values such as the chat API key. Callers depend only on
// this interface so a backend-proxied implementation can replace it later.
type SecretStore interface {
	Secret(name string) (string, error)
	SetSecret(name, value string) error
	DeleteSecret(name string) error
}

const secretPrefix = "secret/"

// LocalSecrets keeps secrets in plain text next to ordinary values.
// It is a convenience store only: anyone who can read the database can read the key.
type LocalSecrets struct {
	kv KV
}

func NewLocalSecrets(kv KV) *LocalSecrets {
	return &LocalSecrets{kv: kv}
}

// Secret returns "" when the secret is unset.
func (s *LocalSecrets) Secret(name string) (string, error) {
	v, ok, err := s.kv.Get(secretPrefix + name)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}

func (s *LocalSecrets) SetSecret(name, value string) error {
	return s.kv.Set(secretPrefix+name, value)
}

func (s *LocalSecrets) DeleteSecret(name string) error {
	return s.kv.Remove(secretPrefix + name)
}
