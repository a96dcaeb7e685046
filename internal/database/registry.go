package database

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Registry tracks the collection names owned by the service. Repositories
// register their collection on construction; dev bootstrap and test
// teardown use the registry to scope destructive resets to exactly those
// collections. It is an explicitly constructed object handed to whoever
// needs it and is never consulted on the request path.
type Registry struct {
	mu    sync.Mutex
	names []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a collection name. Registering the same name twice is a
// no-op.
func (r *Registry) Add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.names {
		if n == name {
			return
		}
	}
	r.names = append(r.names, name)
}

// Names returns a copy of the registered collection names in registration
// order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Reset deletes every document from the registered collections. Documents
// only: the collections and the indexes the repository constructors built
// stay in place, so the service can keep serving right after a reset.
func (r *Registry) Reset(ctx context.Context, db *mongo.Database) error {
	for _, name := range r.Names() {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("failed to clear collection %q: %w", name, err)
		}
	}
	return nil
}
