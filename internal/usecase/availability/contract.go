package availability

import (
	"context"

	"github.com/naturalis/museumapp-api/internal/domain"
)

// StatusReader reads the documents status from the control index.
type StatusReader interface {
	Get(ctx context.Context) (domain.DocumentsStatus, error)
}

// Pinger probes engine liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
