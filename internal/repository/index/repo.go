package index

import (
	"context"
	"fmt"
)

// store is the consumer interface for index lifecycle (ISP).
type store interface {
	CreateIndex(ctx context.Context, index string, mapping []byte) error
	DeleteIndex(ctx context.Context, index string) error
}

// Repo creates and drops indices by name.
type Repo struct {
	store store
}

// New creates an index repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create creates name with the engine-native mapping document.
func (r *Repo) Create(ctx context.Context, name string, mapping []byte) error {
	if name == "" {
		return fmt.Errorf("index name is required")
	}
	if err := r.store.CreateIndex(ctx, name, mapping); err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// Delete drops name.
func (r *Repo) Delete(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("index name is required")
	}
	if err := r.store.DeleteIndex(ctx, name); err != nil {
		return fmt.Errorf("delete index %s: %w", name, err)
	}
	return nil
}
