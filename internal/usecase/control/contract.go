package control

import (
	"context"
	"time"

	"github.com/naturalis/museumapp-api/internal/domain"
)

// IndexManager creates and drops indices by name.
type IndexManager interface {
	Create(ctx context.Context, name string, mapping []byte) error
	Delete(ctx context.Context, name string) error
}

// DocumentWriter writes documents into the primary index.
type DocumentWriter interface {
	Create(ctx context.Context, id string, body []byte) error
	Delete(ctx context.Context, id string) error
	DeleteByQuery(ctx context.Context, body []byte) (int, error)
}

// StatusWriter overwrites the control record.
type StatusWriter interface {
	Put(ctx context.Context, status domain.DocumentsStatus, at time.Time) (domain.ControlRecord, error)
}

// Pinger probes engine liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
