// Package kvstore is the durable string key/value store behind carts and the
// order status overrides. Backends: in-process memory, Redis and SQL.
package kvstore

import "context"

// Store persists opaque string values. Get reports ok=false for absent keys.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Sequencer hands out monotonically increasing ids per name, starting at 1.
type Sequencer interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Backend is what the storefront wires: a store that can also mint ids.
type Backend interface {
	Store
	Sequencer
	Ping(ctx context.Context) error
}
