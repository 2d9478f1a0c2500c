package catalog

import (
	"context"

	"github.com/naturalis/museumapp-api/internal/domain/query"
	"github.com/naturalis/museumapp-api/internal/engine"
)

// Searcher runs one query template against the primary index.
type Searcher interface {
	Search(ctx context.Context, q query.Query) (*engine.SearchResponse, error)
}
