package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/naturalis/museumapp-api/internal/domain/query"
	"github.com/naturalis/museumapp-api/internal/engine"
)

type searchCall struct {
	index    string
	body     string
	opts     engine.SearchOptions
	deadline bool
}

// mockStore implements the consumer interface for tests.
type mockStore struct {
	calls    []searchCall
	searchFn func(ctx context.Context) (*engine.SearchResponse, error)
}

func (m *mockStore) Search(
	ctx context.Context, index string, body []byte, opts engine.SearchOptions,
) (*engine.SearchResponse, error) {
	_, hasDeadline := ctx.Deadline()
	m.calls = append(m.calls, searchCall{index: index, body: string(body), opts: opts, deadline: hasDeadline})
	if m.searchFn != nil {
		return m.searchFn(ctx)
	}
	return &engine.SearchResponse{}, nil
}

func TestSearch_ForwardsBodyAndOptions(t *testing.T) {
	ms := &mockStore{searchFn: func(context.Context) (*engine.SearchResponse, error) {
		resp := &engine.SearchResponse{}
		resp.Hits.Hits = []engine.Hit{{ID: "1", Source: json.RawMessage(`{}`)}}
		return resp, nil
	}}
	repo := New(ms, "museumapp")

	resp, err := repo.Search(context.Background(), query.NewFavouritesExists())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Hits.Hits) != 1 {
		t.Errorf("expected 1 hit, got %d", len(resp.Hits.Hits))
	}

	if len(ms.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(ms.calls))
	}
	c := ms.calls[0]
	if c.index != "museumapp" {
		t.Errorf("index = %q", c.index)
	}
	if c.body != `{"query":{"exists":{"field":"favourites_rank"}}}` {
		t.Errorf("body = %s", c.body)
	}
	if c.opts.Size == nil || *c.opts.Size != query.FavouritesLimit {
		t.Errorf("size = %v", c.opts.Size)
	}
	if len(c.opts.SourceIncludes) != 2 {
		t.Errorf("source includes = %v", c.opts.SourceIncludes)
	}
	if c.opts.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.opts.Timeout, DefaultTimeout)
	}
	if !c.deadline {
		t.Error("expected context deadline on engine call")
	}
}

func TestSearch_WithTimeout(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "museumapp").WithTimeout(2 * time.Second).WithTimeout(0)

	if _, err := repo.Search(context.Background(), query.NewMatchAll("")); err != nil {
		t.Fatal(err)
	}
	if ms.calls[0].opts.Timeout != 2*time.Second {
		t.Errorf("timeout = %v", ms.calls[0].opts.Timeout)
	}
}

func TestSearch_PropagatesEngineError(t *testing.T) {
	ms := &mockStore{searchFn: func(context.Context) (*engine.SearchResponse, error) {
		return nil, &engine.Error{Op: engine.OpSearch, Err: engine.ErrUnavailable}
	}}
	repo := New(ms, "museumapp")

	_, err := repo.Search(context.Background(), query.NewRoomAggregation())
	if !errors.Is(err, engine.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestSearch_RejectsUnbuiltQuery(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "museumapp")

	if _, err := repo.Search(context.Background(), query.Query{}); err == nil {
		t.Fatal("expected error for zero query")
	}
	if len(ms.calls) != 0 {
		t.Error("zero query must not reach the engine")
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "timeout"},
		{engine.ErrUnavailable, "unavailable"},
		{engine.ErrBadRequest, "bad_request"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
