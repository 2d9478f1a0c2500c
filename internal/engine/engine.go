package engine

import (
	"context"
	"time"
)

// Store is the search engine facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade -- consumers use narrow sub-interfaces
type Store interface {
	Pinger
	Searcher
	DocumentStore
	IndexManager
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks engine liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher runs query bodies against an index.
type Searcher interface {
	Search(ctx context.Context, index string, body []byte, opts SearchOptions) (*SearchResponse, error)
}

// DocumentStore provides single-document and by-query operations.
type DocumentStore interface {
	Index(ctx context.Context, index, id string, body []byte, opts IndexOptions) error
	Get(ctx context.Context, index, id string) ([]byte, error)
	Delete(ctx context.Context, index, id string, refresh bool) error
	DeleteByQuery(ctx context.Context, index string, body []byte, refresh bool) (int, error)
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, index string, mapping []byte) error
	DeleteIndex(ctx context.Context, index string) error
}
