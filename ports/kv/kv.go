// Package kv is the snapshot store port. Observers persist controller state
// through it after each dispatched message.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound   = errors.New("kv: not found")
	ErrInvalidKey = errors.New("kv: invalid key")
)

// Entry is a stored value. Meta travels with the data; backends that cannot
// store it natively encode it alongside.
type Entry struct {
	Data []byte         `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

type PutOptions struct {
	// TTL expires the entry. 0 keeps it until deleted.
	TTL time.Duration
}

type Store interface {
	Put(ctx context.Context, key string, entry Entry, opts PutOptions) error
	Get(ctx context.Context, key string) (entry Entry, err error)
	Delete(ctx context.Context, key string) error
	// Keys lists live keys starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Put stores v as JSON.
func Put[T any](ctx context.Context, store Store, key string, v T, opts PutOptions) error {
	return PutMeta(ctx, store, key, v, nil, opts)
}

// PutMeta stores v as JSON together with meta.
func PutMeta[T any](ctx context.Context, store Store, key string, v T, meta map[string]any, opts PutOptions) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}
	return store.Put(ctx, key, Entry{Data: data, Meta: meta}, opts)
}

// Get loads the JSON value stored under key.
func Get[T any](ctx context.Context, store Store, key string) (out T, err error) {
	entry, err := store.Get(ctx, key)
	if err != nil {
		return
	}
	if err = json.Unmarshal(entry.Data, &out); err != nil {
		err = fmt.Errorf("kv: decode %q: %w", key, err)
	}
	return
}
