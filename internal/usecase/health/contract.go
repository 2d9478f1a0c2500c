package health

import (
	"context"

	"github.com/naturalis/museumapp-api/internal/domain"
)

// EnginePinger checks search engine availability.
type EnginePinger interface {
	Ping(ctx context.Context) error
}

// StatusReader reads the documents status from the control index.
type StatusReader interface {
	Get(ctx context.Context) (domain.DocumentsStatus, error)
}

// ConfigChecker reports whether startup configuration checks passed.
type ConfigChecker interface {
	Configured() bool
}
