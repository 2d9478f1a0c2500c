package engine

import (
	"encoding/json"
	"time"
)

// SearchOptions are the per-call knobs passed next to a query body.
type SearchOptions struct {
	Size           *int
	SourceIncludes []string
	Timeout        time.Duration
}

// IndexOptions control a single-document write.
type IndexOptions struct {
	CreateOnly bool // op_type=create, fails with ErrConflict on an existing id
	Refresh    bool
}

// SearchResponse is the subset of the engine's search response this service reads.
type SearchResponse struct {
	Took         int                        `json:"took"`
	TimedOut     bool                       `json:"timed_out"`
	Hits         Hits                       `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations,omitempty"`
}

// Hits is the hits envelope of a search response.
type Hits struct {
	Total Total `json:"total"`
	Hits  []Hit `json:"hits"`
}

// Total is the reported hit count.
type Total struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

// Hit is a single matched document.
type Hit struct {
	Index  string          `json:"_index"`
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}
