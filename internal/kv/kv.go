// Package kv is the synchronous key-value substrate the content store
// persists to. Backends: memory, sqlite, filesystem and S3.
package kv

import (
	"errors"

	"github.com/rs/zerolog"
)

var (
	ErrNotFound      = errors.New("kv: key not found")
	ErrQuotaExceeded = errors.New("kv: quota exceeded")
	ErrInvalidKey    = errors.New("kv: invalid key")
)

// Store is a process-local key-value substrate with last-writer-wins
// semantics. Deleting an absent key is not an error.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

var kvLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	kvLogger = l
}

type prefixed struct {
	prefix string
	next   Store
}

// WithPrefix namespaces every key of next with prefix.
func WithPrefix(next Store, prefix string) Store {
	if prefix == "" {
		return next
	}
	return &prefixed{prefix: prefix, next: next}
}

func (p *prefixed) Get(key string) ([]byte, error) {
	return p.next.Get(p.prefix + key)
}

func (p *prefixed) Set(key string, value []byte) error {
	return p.next.Set(p.prefix+key, value)
}

func (p *prefixed) Delete(key string) error {
	return p.next.Delete(p.prefix + key)
}
