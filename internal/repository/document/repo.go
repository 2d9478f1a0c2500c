package document

import (
	"context"
	"fmt"

	"github.com/naturalis/museumapp-api/internal/engine"
)

// store is the consumer interface for document writes (ISP).
type store interface {
	Index(ctx context.Context, index, id string, body []byte, opts engine.IndexOptions) error
	Delete(ctx context.Context, index, id string, refresh bool) error
	DeleteByQuery(ctx context.Context, index string, body []byte, refresh bool) (int, error)
}

// Repo writes documents into the primary index.
type Repo struct {
	store store
	index string
}

// New creates a document repository over index.
func New(s store, index string) *Repo {
	return &Repo{store: s, index: index}
}

// Create inserts body under id and refuses to overwrite an existing document.
func (r *Repo) Create(ctx context.Context, id string, body []byte) error {
	if err := r.store.Index(ctx, r.index, id, body, engine.IndexOptions{CreateOnly: true}); err != nil {
		return fmt.Errorf("create document %s: %w", id, err)
	}
	return nil
}

// Delete removes one document and refreshes the index.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.index, id, true); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// DeleteByQuery removes every document matching body and refreshes the index.
func (r *Repo) DeleteByQuery(ctx context.Context, body []byte) (int, error) {
	n, err := r.store.DeleteByQuery(ctx, r.index, body, true)
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return n, nil
}
