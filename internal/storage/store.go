package storage

import "errors"

// ErrClosed is returned by a backend after Close.
var ErrClosed = errors.New("storage: store is closed")

// KV 字符串键值持久化接口，所有组件都经由它读写
// KV is the string key/value persistence facade every component reads and writes through.
//
// Set and Remove are synchronous: a nil error means the value survives a restart.
// Values read back must be treated as untrusted.
type KV interface {
	// Get 返回 key 对应的值；不存在时 ok=false
	// Get returns the value for key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Store is a KV backend with a lifecycle.
type Store interface {
	KV

	// Keys 返回带有给定前缀的全部 key（按字典序）
	// Keys lists every key with the given prefix, sorted.
	Keys(prefix string) ([]string, error)

	Close() error
}
