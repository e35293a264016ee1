// Package identity manages the local, unauthenticated nickname that owns a study room.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"studyroom/internal/storage"
)

// ErrEmptyName 昵称为空 / the nickname is blank after trimming
var ErrEmptyName = errors.New("nickname is empty")

// Identity is the locally chosen nickname. It is not a credential.
type Identity struct {
	Name string `json:"name"`
}

// Manager 读写设备级身份 key
// Manager reads and writes the device-global identity key.
type Manager struct {
	kv storage.KV
}

func NewManager(kv storage.KV) *Manager {
	return &Manager{kv: kv}
}

// Parse trims name and validates it without storing anything.
func Parse(name string) (Identity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Identity{}, ErrEmptyName
	}
	return Identity{Name: name}, nil
}

// Save stores id as the device's current identity.
func (m *Manager) Save(id Identity) error {
	if err := storage.SaveJSON(m.kv, storage.KeyIdentity, id); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// Login stores the trimmed nickname and returns it.
func (m *Manager) Login(name string) (Identity, error) {
	id, err := Parse(name)
	if err != nil {
		return Identity{}, err
	}
	if err := m.Save(id); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// Current returns the stored identity. A missing, corrupted or blank value means logged out.
func (m *Manager) Current() (Identity, bool, error) {
	var id Identity
	found, err := storage.LoadJSON(m.kv, storage.KeyIdentity, &id)
	if err != nil || !found {
		return Identity{}, false, err
	}
	id.Name = strings.TrimSpace(id.Name)
	if id.Name == "" {
		storage.DiscardCorrupt(m.kv, storage.KeyIdentity, ErrEmptyName)
		return Identity{}, false, nil
	}
	return id, true, nil
}

// Logout clears the identity. Data kept under the owner's namespace is left in place.
func (m *Manager) Logout() error {
	if err := m.kv.Remove(storage.KeyIdentity); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}
