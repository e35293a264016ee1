package storage

import (
	"net/url"
	"strings"
)

const scopePrefix = "u/"

// ScopedKV 将所有 key 加上身份前缀，保证不同身份的数据互不可见
// ScopedKV prefixes every key with an owner namespace so identities never share state.
type ScopedKV struct {
	base   KV
	prefix string
}

// Scoped returns the owner's view of base. Owner names are trimmed, lower-cased and
// path-escaped so "Alice", " alice " and "ALICE" resolve to the same namespace.
func Scoped(base KV, owner string) *ScopedKV {
	return &ScopedKV{base: base, prefix: OwnerPrefix(owner)}
}

// OwnerPrefix returns the key prefix used for owner.
func OwnerPrefix(owner string) string {
	norm := strings.ToLower(strings.TrimSpace(owner))
	return scopePrefix + url.PathEscape(norm) + "/"
}

func (s *ScopedKV) Prefix() string {
	return s.prefix
}

func (s *ScopedKV) Get(key string) (string, bool, error) {
	return s.base.Get(s.prefix + key)
}

func (s *ScopedKV) Set(key, value string) error {
	return s.base.Set(s.prefix+key, value)
}

func (s *ScopedKV) Remove(key string) error {
	return s.base.Remove(s.prefix + key)
}
