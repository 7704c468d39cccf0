package logstream

import (
	"context"
	"errors"
)

type contextKey struct{}

// ErrNoStore is returned by FromContext when ctx carries no store
var ErrNoStore = errors.New("log stream not found in context")

// NewContext returns a copy of ctx carrying store
func NewContext(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, store)
}

// FromContext returns the store carried by ctx
func FromContext(ctx context.Context) (*Store, error) {
	if ctx == nil {
		return nil, ErrNoStore
	}
	store, ok := ctx.Value(contextKey{}).(*Store)
	if !ok || store == nil {
		return nil, ErrNoStore
	}
	return store, nil
}
