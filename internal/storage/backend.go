// Package storage provides the key/value backing stores used on a device and
// the scoped adapter that namespaces keys per local account.
//
// Every persisted key lives under the "fsr." prefix. Three reserved keys are
// shared by all accounts (the users list, the device salt and the current-user
// pointer); everything else is rewritten to fsr.<userID>.<rest> when accessed
// through a Scoped handle.
package storage

import (
	"context"
	"errors"
	"sort"
)

var (
	// ErrNoBackend signals a configuration error: a scoped handle was requested
	// without a backing store.
	ErrNoBackend = errors.New("storage: no backing store")
	ErrNoUserID  = errors.New("storage: empty user id")
)

// Backend is a synchronous string key/value store. Missing keys are reported
// with ok == false, not as errors. Key(i) and Length expose a stable (sorted)
// enumeration of the keys.
type Backend interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Key(ctx context.Context, index int) (key string, ok bool, err error)
	Length(ctx context.Context) (int, error)
}

// Batcher is implemented by backends that can apply a group of operations
// atomically. fn must use the Backend it is given, not the outer one.
type Batcher interface {
	Batch(ctx context.Context, fn func(ctx context.Context, b Backend) error) error
}

type keyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Keys returns every key in b in sorted order.
func Keys(ctx context.Context, b Backend) ([]string, error) {
	if kl, ok := b.(keyLister); ok {
		return kl.Keys(ctx)
	}

	n, err := b.Length(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		k, ok, err := b.Key(ctx, i)
		if err != nil {
			return nil, err
		}
		if ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Batch runs fn atomically when b supports it, and directly otherwise.
func Batch(ctx context.Context, b Backend, fn func(ctx context.Context, b Backend) error) error {
	if bb, ok := b.(Batcher); ok {
		return bb.Batch(ctx, fn)
	}
	return fn(ctx, b)
}
