package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/naturalis/museumapp-api/internal/domain/query"
	"github.com/naturalis/museumapp-api/internal/engine"
	"github.com/naturalis/museumapp-api/internal/metrics"
)

// DefaultTimeout bounds a single engine query.
const DefaultTimeout = 5 * time.Second

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, index string, body []byte, opts engine.SearchOptions) (*engine.SearchResponse, error)
}

// Repo is the search gateway: it binds the primary index and request timeout.
type Repo struct {
	store   store
	index   string
	timeout time.Duration
}

// New creates a search repository over index.
func New(s store, index string) *Repo {
	return &Repo{store: s, index: index, timeout: DefaultTimeout}
}

// WithTimeout overrides the per-query timeout. Non-positive values are ignored.
func (r *Repo) WithTimeout(d time.Duration) *Repo {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Search serializes q and runs it against the primary index.
func (r *Repo) Search(ctx context.Context, q query.Query) (*engine.SearchResponse, error) {
	body, err := q.Body()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	template := string(q.Kind())
	start := time.Now()
	resp, err := r.store.Search(ctx, r.index, body, engine.SearchOptions{
		Size:           q.Size(),
		SourceIncludes: q.SourceIncludes(),
		Timeout:        r.timeout,
	})
	metrics.EngineRequestDuration.WithLabelValues(template).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EngineRequestsTotal.WithLabelValues(template, errorStatus(err)).Inc()
		return nil, fmt.Errorf("search %s: %w", template, err)
	}

	metrics.EngineRequestsTotal.WithLabelValues(template, "ok").Inc()
	metrics.EngineHitsTotal.WithLabelValues(template).Add(float64(len(resp.Hits.Hits)))
	return resp, nil
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, engine.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, engine.ErrBadRequest):
		return "bad_request"
	default:
		return "error"
	}
}
