package status

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/naturalis/museumapp-api/internal/domain"
	"github.com/naturalis/museumapp-api/internal/engine"
)

// store is the consumer interface for the control record (ISP).
type store interface {
	Get(ctx context.Context, index, id string) ([]byte, error)
	Index(ctx context.Context, index, id string, body []byte, opts engine.IndexOptions) error
}

// Repo reads and writes the documents status record in the control index.
type Repo struct {
	store store
	index string
}

// New creates a status repository over the control index.
func New(s store, controlIndex string) *Repo {
	return &Repo{store: s, index: controlIndex}
}

// Get returns the stored documents status.
// A missing record yields engine.ErrNotFound, an unreadable one domain.ErrMalformedStatus.
func (r *Repo) Get(ctx context.Context) (domain.DocumentsStatus, error) {
	raw, err := r.store.Get(ctx, r.index, domain.ControlRecordID)
	if err != nil {
		return "", fmt.Errorf("get control record: %w", err)
	}

	var rec domain.ControlRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMalformedStatus, err)
	}
	st, err := domain.ParseDocumentsStatus(string(rec.Status))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMalformedStatus, err)
	}
	return st, nil
}

// Put overwrites the control record with status and the local timestamp at.
func (r *Repo) Put(ctx context.Context, st domain.DocumentsStatus, at time.Time) (domain.ControlRecord, error) {
	rec := domain.ControlRecord{Status: st, Created: at.Local().Format(domain.ControlTimeLayout)}
	body, err := json.Marshal(rec)
	if err != nil {
		return domain.ControlRecord{}, fmt.Errorf("marshal control record: %w", err)
	}
	if err := r.store.Index(ctx, r.index, domain.ControlRecordID, body, engine.IndexOptions{Refresh: true}); err != nil {
		return domain.ControlRecord{}, fmt.Errorf("put control record: %w", err)
	}
	return rec, nil
}
