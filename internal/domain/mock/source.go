package mock

import "context"

// Source loads mock definitions from a configuration store.
type Source interface {
	// Load returns definitions in declaration order. Ordinals are assigned by the caller.
	Load(ctx context.Context) ([]Definition, error)
}
