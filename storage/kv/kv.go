// Package kv is the durable key-value persistence adapter.
// Each top-level collection is stored independently under its own key as JSON.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

var ErrNotFound = errors.New("kv: key not found")

// Store is a durable key-value store.
type Store interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type namespaced struct {
	Store
	prefix string
}

// Namespaced returns a Store whose keys are all prefixed with "<ns>:".
func Namespaced(s Store, ns string) Store {
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return s
	}
	return &namespaced{Store: s, prefix: ns + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.Store.Get(ctx, n.prefix+key)
}

func (n *namespaced) Put(ctx context.Context, key string, value []byte) error {
	return n.Store.Put(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.Store.Delete(ctx, n.prefix+key)
}

// Load decodes the value stored under key into dst.
// It returns false without error when the key is absent; a corrupt value returns false and the
// decoding error, leaving dst untouched so that callers can keep their default.
func Load(ctx context.Context, s Store, key string, dst interface{}) (bool, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrapf(err, "reading %q", key)
	}
	if len(data) == 0 || string(data) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, pkgerrors.Wrapf(err, "decoding %q", key)
	}
	return true, nil
}

// Save encodes v as JSON and stores it under key.
func Save(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return pkgerrors.Wrapf(err, "encoding %q", key)
	}
	if err := s.Put(ctx, key, data); err != nil {
		return pkgerrors.Wrapf(err, "writing %q", key)
	}
	return nil
}
