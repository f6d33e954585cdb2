package manager

import (
	"context"
	"time"

	"synthmind/internal/acquire"
)

// Resolver makes a model's artifacts available locally. *acquire.Resolver
// satisfies it.
type Resolver interface {
	EnsureLocal(ctx context.Context, id string, c acquire.Category) (string, error)
	Offline() bool
}

// Factory builds a ready instance from a local artifact directory.
type Factory[T any] func(ctx context.Context, dir string) (T, error)

type key struct {
	category acquire.Category
	id       string
}

func (k key) String() string { return string(k.category) + "/" + k.id }

// entry is one cached instance. Entries are never evicted.
type entry struct {
	instance  any
	dir       string
	createdAt time.Time
	lastUsed  time.Time
	uses      int64
	// Queueing primitives
	genCh   chan struct{} // size 1: single in-flight call
	queueCh chan struct{} // buffered: queue slots
}
