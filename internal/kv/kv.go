// Package kv is the key-value storage boundary the journal persists through.
// It mirrors the browser storage API the journal was first written against:
// string keys, string values, whole-value reads and writes.
package kv

import "context"

// Storage is a flat string key-value store. A missing key is reported as
// ok == false with a nil error.
type Storage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

type scoped struct {
	inner  Storage
	prefix string
}

// Scope namespaces every key of inner under scope, so several collections
// can share one backend.
func Scope(inner Storage, scope string) Storage {
	if scope == "" {
		return inner
	}
	return &scoped{inner: inner, prefix: scope + "/"}
}

func (s *scoped) GetItem(ctx context.Context, key string) (string, bool, error) {
	return s.inner.GetItem(ctx, s.prefix+key)
}

func (s *scoped) SetItem(ctx context.Context, key, value string) error {
	return s.inner.SetItem(ctx, s.prefix+key, value)
}

func (s *scoped) RemoveItem(ctx context.Context, key string) error {
	return s.inner.RemoveItem(ctx, s.prefix+key)
}
